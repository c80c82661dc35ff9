package cmd

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/viatext/vtnode/node/core"
	"github.com/viatext/vtnode/std/log"
)

type Profiler struct {
	config  *core.Config
	cpuFile *os.File
}

func NewProfiler(config *core.Config) *Profiler {
	return &Profiler{config: config}
}

func (p *Profiler) String() string {
	return "profiler"
}

// Start begins CPU profiling if an output file is configured.
func (p *Profiler) Start() (err error) {
	if p.config.Core.CpuProfile == "" {
		return nil
	}

	p.cpuFile, err = os.Create(p.config.Core.CpuProfile)
	if err != nil {
		log.Error(p, "Unable to open output file for CPU profile", "err", err)
		return err
	}

	log.Info(p, "Profiling CPU", "out", p.config.Core.CpuProfile)
	if err = pprof.StartCPUProfile(p.cpuFile); err != nil {
		p.cpuFile.Close()
		p.cpuFile = nil
	}
	return err
}

// Stop writes the heap profile and ends CPU profiling.
func (p *Profiler) Stop() {
	if p.config.Core.MemProfile != "" {
		p.writeHeap()
	}

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
		p.cpuFile = nil
	}
}

func (p *Profiler) writeHeap() {
	memProfileFile, err := os.Create(p.config.Core.MemProfile)
	if err != nil {
		log.Error(p, "Unable to open output file for memory profile", "err", err)
		return
	}
	defer memProfileFile.Close()

	log.Info(p, "Profiling memory", "out", p.config.Core.MemProfile)
	runtime.GC()
	if err := pprof.WriteHeapProfile(memProfileFile); err != nil {
		log.Error(p, "Unable to write memory profile", "err", err)
	}
}
