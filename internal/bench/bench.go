// Package bench is the teacher's benchmark.Run adapted for the vdjinfer
// CLI: an opt-in wrapper reporting wall time and memory for whichever
// subcommand the -benchmark flag was passed on.
package bench

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// Run wraps f, measuring its runtime and memory usage the way the
// teacher's benchmark.Run does, labeled by the subcommand that invoked it.
func Run(label string, f func() error) error {
	fmt.Printf("[bench] running: %s\n", label)
	fmt.Println("[bench] timestamp:", time.Now().Format(time.RFC1123))
	if host, err := os.Hostname(); err == nil {
		fmt.Println("[bench] hostname:", host)
	}
	fmt.Println("[bench] go version:", runtime.Version())
	fmt.Printf("[bench] os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	runtime.GC()
	var memStart, memEnd runtime.MemStats
	runtime.ReadMemStats(&memStart)
	start := time.Now()
	startGoroutines := runtime.NumGoroutine()

	err := f()

	elapsed := time.Since(start)
	runtime.ReadMemStats(&memEnd)
	endGoroutines := runtime.NumGoroutine()

	fmt.Printf("[bench] time elapsed: %v\n", elapsed)
	fmt.Printf("[bench] memory used: %.2f MB\n", float64(memEnd.Alloc-memStart.Alloc)/1024.0/1024.0)
	fmt.Printf("[bench] total allocated: %.2f MB\n", float64(memEnd.TotalAlloc-memStart.TotalAlloc)/1024.0/1024.0)
	fmt.Printf("[bench] heap in use at end: %.2f MB\n", float64(memEnd.HeapAlloc)/1024.0/1024.0)
	fmt.Printf("[bench] gc cycles: %d\n", memEnd.NumGC-memStart.NumGC)
	fmt.Printf("[bench] cpu cores: %d\n", runtime.NumCPU())
	fmt.Printf("[bench] goroutines started: %d -> %d\n", startGoroutines, endGoroutines)
	fmt.Println("[bench] ----------------------------------------")
	return err
}
