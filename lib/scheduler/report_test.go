// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scheduler

import (
	"bytes"
	"context"

	check "gopkg.in/check.v1"

	"github.com/workflowsim/minmin/lib/ctxlog"
	"github.com/workflowsim/minmin/lib/workflow"
)

var _ = check.Suite(&ReportSuite{})

type ReportSuite struct{}

func (*ReportSuite) TestRender(c *check.C) {
	wf := exampleWorkflow(c)
	ctx := ctxlog.Context(context.Background(), ctxlog.TestLogger(c))
	res := New(ctx, wf, nil).Run()
	var buf bytes.Buffer
	err := WriteReport(&buf, wf, res)
	c.Assert(err, check.IsNil)
	c.Check(buf.String(), check.Equals, `Task Allocation:
  vm1: [A B C]
  vm2: [A]

Earliest Start Times (EST):
  A on vm1: 0
  A on vm2: 0
  B on vm1: 0
  C on vm1: 4

Earliest Finish Times (EFT):
  A on vm1: 0
  A on vm2: 0
  B on vm1: 4
  C on vm1: 7

Performance Metrics:
  Makespan: 7
  Load Balancing: 50
  Speedup: 1
  Efficiency: 50%
  Resource Utilization: 50
`)
}

func (*ReportSuite) TestRenderUnscheduled(c *check.C) {
	wf := mustWorkflow(c, workflow.Document{
		Tasks:     []workflow.TaskID{"A", "D", "E"},
		EntryTask: "A",
		ExitTask:  "A",
		Dependencies: map[workflow.TaskID][]workflow.TaskID{
			"D": {"E"}, "E": {"D"},
		},
		CloudServers: []workflow.DocumentServer{{ID: "s1", VMs: []workflow.VMID{"vm1"}}},
		ECTTable: map[workflow.TaskID]map[workflow.VMID]float64{
			"A": {"vm1": 1},
			"D": {"vm1": 1},
			"E": {"vm1": 1},
		},
	})
	ctx := ctxlog.Context(context.Background(), ctxlog.TestLogger(c))
	res := New(ctx, wf, nil).Run()
	c.Check(res.Unreachable, check.DeepEquals, []workflow.TaskID{"D", "E"})
	var buf bytes.Buffer
	err := WriteReport(&buf, wf, res)
	c.Assert(err, check.IsNil)
	c.Check(bytes.Contains(buf.Bytes(), []byte("Unscheduled Tasks:\n  D\n  E\n")), check.Equals, true)
}
