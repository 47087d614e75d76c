// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scheduler

import (
	"sort"

	"github.com/workflowsim/minmin/lib/workflow"
)

// SelectOrder runs Phase I: it produces a total order over the
// workflow's tasks respecting precedence. A task is ready when every
// dependency has already been selected (the entry task is always
// ready). Among ready tasks, the one with the smallest best-case
// completion time -- min over all VMs of ECT(task, vm) -- is selected
// next; ties are broken by lexicographic task id.
//
// Tasks that never become ready because of a dependency cycle or a
// dependency that is itself unreachable are returned in unreachable
// (sorted by id) and omitted from the queue. SelectOrder performs no
// placement and does not mutate the model.
func SelectOrder(wf *workflow.Workflow) (queue, unreachable []workflow.TaskID) {
	selected := make(map[workflow.TaskID]bool, len(wf.Tasks))
	for len(queue) < len(wf.Tasks) {
		var best workflow.TaskID
		bestTime, found := 0.0, false
		for _, t := range wf.Tasks {
			if selected[t] || !ready(wf, t, selected) {
				continue
			}
			bct := wf.MinExecTime(t)
			if !found || bct < bestTime || (bct == bestTime && t < best) {
				best, bestTime, found = t, bct, true
			}
		}
		if !found {
			break
		}
		queue = append(queue, best)
		selected[best] = true
	}
	for _, t := range wf.Tasks {
		if !selected[t] {
			unreachable = append(unreachable, t)
		}
	}
	sort.Slice(unreachable, func(i, j int) bool { return unreachable[i] < unreachable[j] })
	return queue, unreachable
}

func ready(wf *workflow.Workflow, t workflow.TaskID, selected map[workflow.TaskID]bool) bool {
	if t == wf.EntryTask {
		return true
	}
	for _, d := range wf.Deps[t] {
		if !selected[d] {
			return false
		}
	}
	return true
}
