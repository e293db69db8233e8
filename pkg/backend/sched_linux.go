//go:build linux

// ABOUTME: Linux thread scheduling for worker threads
// ABOUTME: Applies nice values and CPU affinity to the calling thread
package backend

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// maxCPU is the size of the kernel's default cpu_set_t
const maxCPU = 1024

// callerNice returns the nice value of the calling thread
func callerNice() (int, error) {
	// The raw syscall reports 20 - nice
	prio, err := unix.Getpriority(unix.PRIO_PROCESS, unix.Gettid())
	if err != nil {
		return 0, err
	}
	return 20 - prio, nil
}

func setThreadNice(nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), nice)
}

func setThreadAffinity(cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		if cpu < 0 || cpu >= maxCPU {
			return fmt.Errorf("cpu %d out of range", cpu)
		}
		set.Set(cpu)
	}
	return unix.SchedSetaffinity(0, &set)
}
