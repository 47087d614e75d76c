// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scheduler

import (
	"github.com/workflowsim/minmin/lib/workflow"
)

// Place runs Phase II: it places each task in the given queue on the
// VM that minimizes the task's earliest finish time, and returns the
// resulting allocation and the EST/EFT tables.
//
// The entry task is broadcast: it is appended to every VM's list with
// EST=0 and EFT=ECT(entry, vm). This models zero-cost availability of
// the start node on every VM, not a true single-VM assignment; a
// dependency on the entry task contributes the entry's local EFT on
// the candidate VM, with no communication delay.
//
// Every other task is placed, in strict queue order, on the VM with
// the globally smallest EFT, where
//
//	EST(task, vm) = max over deps d of EFT(d, vm(d)) + comm(d, task)
//
// and comm is 0 when vm and vm(d) belong to the same cloud server.
// EFT ties are broken by the fixed VM enumeration order (the first
// minimal EFT wins). Placements are never revisited.
//
// Place enforces cross-task precedence only: a task's EST is not
// constrained by the finish time of a previously placed task on the
// same VM, so tasks assigned to one VM may overlap in time. This is a
// known limitation of the reference heuristic, kept intact; see
// DESIGN.md.
func Place(wf *workflow.Workflow, queue []workflow.TaskID) (Allocation, TimeTable, TimeTable) {
	alloc := make(Allocation, len(wf.VMs()))
	est := make(TimeTable)
	eft := make(TimeTable)
	vmOf := make(map[workflow.TaskID]workflow.VMID, len(queue))

	for _, task := range queue {
		if task == wf.EntryTask {
			for _, vm := range wf.VMs() {
				est[Key{task, vm}] = 0
				eft[Key{task, vm}] = wf.ExecTime(task, vm)
				alloc[vm] = append(alloc[vm], task)
			}
			continue
		}

		var bestVM workflow.VMID
		bestEST, bestEFT, found := 0.0, 0.0, false
		for _, vm := range wf.VMs() {
			start := startTime(wf, task, vm, vmOf, eft)
			finish := start + wf.ExecTime(task, vm)
			if !found || finish < bestEFT {
				bestVM, bestEST, bestEFT, found = vm, start, finish, true
			}
		}
		est[Key{task, bestVM}] = bestEST
		eft[Key{task, bestVM}] = bestEFT
		alloc[bestVM] = append(alloc[bestVM], task)
		vmOf[task] = bestVM
	}
	return alloc, est, eft
}

// startTime returns the earliest start time of task on vm: the
// latest dependency finish time plus any cross-server communication
// delay, or 0 if the task has no dependencies.
func startTime(wf *workflow.Workflow, task workflow.TaskID, vm workflow.VMID, vmOf map[workflow.TaskID]workflow.VMID, eft TimeTable) float64 {
	start := 0.0
	for _, dep := range wf.Deps[task] {
		var finish float64
		if dep == wf.EntryTask {
			// Entry task is available on every VM at its
			// local finish time.
			finish = eft[Key{dep, vm}]
		} else {
			depVM, placed := vmOf[dep]
			if !placed {
				// Unreachable dependency; SelectOrder
				// guarantees this never happens for
				// queued tasks.
				continue
			}
			finish = eft[Key{dep, depVM}]
			if wf.ServerOf(depVM) != wf.ServerOf(vm) {
				finish += wf.CommTime(dep, task)
			}
		}
		if finish > start {
			start = finish
		}
	}
	return start
}
