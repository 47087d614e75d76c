// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scheduler

import (
	"fmt"
	"io"

	"github.com/workflowsim/minmin/lib/workflow"
)

// WriteReport renders the plain-text scheduling report: the per-VM
// allocation listing, the EST and EFT tables, and the QoS metrics.
// Output order is deterministic: VMs in enumeration order, table
// entries in placement order.
func WriteReport(w io.Writer, wf *workflow.Workflow, res *Result) error {
	var err error
	printf := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("Task Allocation:\n")
	for _, vm := range wf.VMs() {
		printf("  %s: %v\n", vm, res.Allocation[vm])
	}

	printf("\nEarliest Start Times (EST):\n")
	eachEntry(wf, res, res.EST, func(task workflow.TaskID, vm workflow.VMID, t float64) {
		printf("  %s on %s: %g\n", task, vm, t)
	})

	printf("\nEarliest Finish Times (EFT):\n")
	eachEntry(wf, res, res.EFT, func(task workflow.TaskID, vm workflow.VMID, t float64) {
		printf("  %s on %s: %g\n", task, vm, t)
	})

	printf("\nPerformance Metrics:\n")
	printf("  Makespan: %g\n", res.Metrics.Makespan)
	printf("  Load Balancing: %g\n", res.Metrics.LoadBalancing)
	printf("  Speedup: %g\n", res.Metrics.Speedup)
	printf("  Efficiency: %g%%\n", res.Metrics.Efficiency)
	printf("  Resource Utilization: %g\n", res.Metrics.ResourceUtilization)

	if len(res.Unreachable) > 0 {
		printf("\nUnscheduled Tasks:\n")
		for _, t := range res.Unreachable {
			printf("  %s\n", t)
		}
	}
	return err
}

// eachEntry visits the populated (task, VM) entries of a time table
// in placement order: tasks in queue order, VMs in enumeration order.
func eachEntry(wf *workflow.Workflow, res *Result, table TimeTable, f func(workflow.TaskID, workflow.VMID, float64)) {
	for _, task := range res.Queue {
		for _, vm := range wf.VMs() {
			if t, ok := table[Key{task, vm}]; ok {
				f(task, vm, t)
			}
		}
	}
}
