// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package workflow provides the static data model for a scheduling
// run: a task DAG, a pool of virtual machines grouped into cloud
// servers, an execution time table, and a cross-server communication
// time table. A Workflow is built once by Load and never mutated by
// the scheduler.
package workflow

// TaskID identifies a task in the workflow DAG.
type TaskID string

// VMID identifies a virtual machine.
type VMID string

// ServerID identifies a cloud server. VMs on the same server
// communicate at zero cost.
type ServerID string

// TaskPair is a directed (source, destination) task pair, used to key
// communication times.
type TaskPair struct {
	From TaskID
	To   TaskID
}

// CloudServer owns an ordered list of VMs. Document order is
// significant: it defines the fixed VM enumeration order used for
// deterministic tie-breaking during placement.
type CloudServer struct {
	ID  ServerID
	VMs []VMID
}

// Workflow is the immutable model a scheduling run operates on.
type Workflow struct {
	Tasks     []TaskID // document order
	EntryTask TaskID
	ExitTask  TaskID
	Deps      map[TaskID][]TaskID
	CommTimes map[TaskPair]float64
	Servers   []CloudServer
	ECT       map[TaskID]map[VMID]float64

	vmOrder  []VMID
	vmServer map[VMID]ServerID
}

// VMs returns every VM in the fixed enumeration order: servers in
// document order, VMs in document order within each server.
func (wf *Workflow) VMs() []VMID {
	return wf.vmOrder
}

// ServerOf returns the cloud server that owns the given VM.
func (wf *Workflow) ServerOf(vm VMID) ServerID {
	return wf.vmServer[vm]
}

// ExecTime returns ECT(task, vm). Load guarantees an entry exists for
// every (task, VM) pair.
func (wf *Workflow) ExecTime(task TaskID, vm VMID) float64 {
	return wf.ECT[task][vm]
}

// MinExecTime returns the smallest ECT(task, vm) over all VMs -- the
// task's best-case completion time ignoring contention and
// communication cost.
func (wf *Workflow) MinExecTime(task TaskID) float64 {
	min := 0.0
	for i, vm := range wf.vmOrder {
		if t := wf.ECT[task][vm]; i == 0 || t < min {
			min = t
		}
	}
	return min
}

// CommTime returns the configured communication delay for the given
// dependency edge, or 0 if none is configured. It does not apply the
// same-server exemption; callers decide whether the edge crosses
// servers.
func (wf *Workflow) CommTime(from, to TaskID) float64 {
	return wf.CommTimes[TaskPair{From: from, To: to}]
}
