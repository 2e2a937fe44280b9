// Package profile starts optional runtime profiling with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag. Without it,
// [Modes] is empty and [Config.Start] always returns a no-op [Stopper].
//
//	stop := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithPath(dir),
//	).Start()
//	defer stop.Stop()
//
// Profiles are written under the path as <mode>.pprof and can be inspected
// with "go tool pprof". Builds with the tag also register the
// [net/http/pprof] handlers on the default mux.
package profile

// Tag is the build tag that enables profiling.
const Tag = "pprof"
