// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

// Package scheduler computes a static placement of a workflow DAG
// onto a pool of heterogeneous VMs using a two-phase Min-Min list
// scheduling heuristic, and derives QoS metrics from the placement.
//
// Phase I orders the tasks by repeatedly selecting the ready task
// with the smallest best-case completion time. Phase II places each
// task, in that order, on the VM that minimizes its earliest finish
// time, accounting for cross-server communication delay.
package scheduler

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/workflowsim/minmin/lib/ctxlog"
	"github.com/workflowsim/minmin/lib/workflow"
)

// Key is a composite (task, VM) key for the EST/EFT tables.
type Key struct {
	Task workflow.TaskID
	VM   workflow.VMID
}

// TimeTable maps (task, VM) to a time value. Entries are written once
// during placement and never revised.
type TimeTable map[Key]float64

// Allocation maps each VM to the tasks assigned to it, in assignment
// order (not necessarily execution order).
type Allocation map[workflow.VMID][]workflow.TaskID

// Result is the complete outcome of a scheduling run.
type Result struct {
	Queue       []workflow.TaskID // Phase I task order
	Unreachable []workflow.TaskID // tasks that never became ready; not scheduled
	Allocation  Allocation
	EST         TimeTable
	EFT         TimeTable
	Metrics     Metrics
}

// A Scheduler runs the two phases on a loaded workflow model. The
// model is never mutated; a Scheduler can be reused, and every run on
// the same model produces the same Result.
type Scheduler struct {
	logger logrus.FieldLogger
	wf     *workflow.Workflow

	mMakespan            prometheus.Gauge
	mLoadBalancing       prometheus.Gauge
	mSpeedup             prometheus.Gauge
	mEfficiency          prometheus.Gauge
	mResourceUtilization prometheus.Gauge
}

// New returns a Scheduler for the given workflow, registering its QoS
// gauges on reg.
func New(ctx context.Context, wf *workflow.Workflow, reg *prometheus.Registry) *Scheduler {
	sch := &Scheduler{
		logger: ctxlog.FromContext(ctx),
		wf:     wf,
	}
	sch.registerMetrics(reg)
	return sch
}

func (sch *Scheduler) registerMetrics(reg *prometheus.Registry) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	sch.mMakespan = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "minmin",
		Subsystem: "scheduler",
		Name:      "makespan",
		Help:      "Total elapsed time from workflow start to the last task's completion.",
	})
	reg.MustRegister(sch.mMakespan)
	sch.mLoadBalancing = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "minmin",
		Subsystem: "scheduler",
		Name:      "load_balancing_percent",
		Help:      "Average per-VM load divided by maximum per-VM load, as a percentage.",
	})
	reg.MustRegister(sch.mLoadBalancing)
	sch.mSpeedup = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "minmin",
		Subsystem: "scheduler",
		Name:      "speedup",
		Help:      "Best-case sequential time divided by makespan.",
	})
	reg.MustRegister(sch.mSpeedup)
	sch.mEfficiency = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "minmin",
		Subsystem: "scheduler",
		Name:      "efficiency_percent",
		Help:      "Speedup divided by total VM count, as a percentage.",
	})
	reg.MustRegister(sch.mEfficiency)
	sch.mResourceUtilization = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "minmin",
		Subsystem: "scheduler",
		Name:      "resource_utilization_percent",
		Help:      "Total assigned work divided by makespan times the number of used VMs, as a percentage.",
	})
	reg.MustRegister(sch.mResourceUtilization)
}

func (sch *Scheduler) updateMetrics(m Metrics) {
	sch.mMakespan.Set(m.Makespan)
	sch.mLoadBalancing.Set(m.LoadBalancing)
	sch.mSpeedup.Set(m.Speedup)
	sch.mEfficiency.Set(m.Efficiency)
	sch.mResourceUtilization.Set(m.ResourceUtilization)
}

// Run executes one scheduling pass: select task order, place tasks,
// compute metrics.
func (sch *Scheduler) Run() *Result {
	sch.logger.WithFields(logrus.Fields{
		"Tasks": len(sch.wf.Tasks),
		"VMs":   len(sch.wf.VMs()),
	}).Debug("scheduling workflow")

	queue, unreachable := SelectOrder(sch.wf)
	for _, t := range unreachable {
		sch.logger.WithField("Task", t).Warn("task never becomes ready (cyclic or dangling dependency); leaving it unscheduled")
	}

	alloc, est, eft := Place(sch.wf, queue)
	metrics := ComputeMetrics(sch.wf, alloc, eft)
	sch.updateMetrics(metrics)

	sch.logger.WithFields(logrus.Fields{
		"Makespan":            metrics.Makespan,
		"LoadBalancing":       metrics.LoadBalancing,
		"Speedup":             metrics.Speedup,
		"Efficiency":          metrics.Efficiency,
		"ResourceUtilization": metrics.ResourceUtilization,
	}).Info("scheduling finished")

	return &Result{
		Queue:       queue,
		Unreachable: unreachable,
		Allocation:  alloc,
		EST:         est,
		EFT:         eft,
		Metrics:     metrics,
	}
}
