// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scheduler

import (
	"github.com/workflowsim/minmin/lib/workflow"
)

// Metrics are the QoS values derived from a finished placement. All
// five are pure functions of the final state and can be recomputed at
// any time.
type Metrics struct {
	Makespan            float64
	LoadBalancing       float64 // percent
	Speedup             float64
	Efficiency          float64 // percent
	ResourceUtilization float64 // percent
}

// ComputeMetrics derives the QoS metrics from a finished allocation
// and EFT table.
func ComputeMetrics(wf *workflow.Workflow, alloc Allocation, eft TimeTable) Metrics {
	makespan := makespan(eft)
	speedup := 0.0
	if makespan > 0 {
		speedup = sequentialTime(wf) / makespan
	}
	efficiency := 0.0
	if n := len(wf.VMs()); n > 0 {
		efficiency = speedup / float64(n) * 100
	}
	return Metrics{
		Makespan:            makespan,
		LoadBalancing:       loadBalancing(wf, alloc),
		Speedup:             speedup,
		Efficiency:          efficiency,
		ResourceUtilization: resourceUtilization(wf, alloc, makespan),
	}
}

// makespan is the maximum recorded EFT, or 0 if nothing was placed.
func makespan(eft TimeTable) float64 {
	max := 0.0
	for _, t := range eft {
		if t > max {
			max = t
		}
	}
	return max
}

// sequentialTime is the sum over all tasks of the task's best-case
// completion time. It is a non-schedulable baseline used only to
// normalize speedup.
func sequentialTime(wf *workflow.Workflow) float64 {
	sum := 0.0
	for _, t := range wf.Tasks {
		sum += wf.MinExecTime(t)
	}
	return sum
}

// loadBalancing is (average per-VM load / maximum per-VM load) * 100,
// over the VMs that have at least one assigned task. A VM's load is
// the sum of ECT(task, vm) over its assigned tasks.
func loadBalancing(wf *workflow.Workflow, alloc Allocation) float64 {
	if len(alloc) == 0 {
		return 0
	}
	total, max := 0.0, 0.0
	for vm, tasks := range alloc {
		load := 0.0
		for _, t := range tasks {
			load += wf.ExecTime(t, vm)
		}
		total += load
		if load > max {
			max = load
		}
	}
	if max == 0 {
		return 0
	}
	avg := total / float64(len(alloc))
	return avg / max * 100
}

// resourceUtilization is the total assigned work divided by
// (makespan * number of VMs with at least one assigned task), as a
// percentage.
func resourceUtilization(wf *workflow.Workflow, alloc Allocation, makespan float64) float64 {
	if makespan == 0 || len(alloc) == 0 {
		return 0
	}
	work := 0.0
	for vm, tasks := range alloc {
		for _, t := range tasks {
			work += wf.ExecTime(t, vm)
		}
	}
	return work / (makespan * float64(len(alloc))) * 100
}
