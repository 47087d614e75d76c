// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package workflow

import (
	"errors"
	"strings"

	check "gopkg.in/check.v1"
)

var _ = check.Suite(&LoadSuite{})

type LoadSuite struct{}

const exampleJSON = `{
	"tasks": ["A", "B", "C"],
	"entry_task": "A",
	"exit_task": "C",
	"dependencies": {"B": ["A"], "C": ["B"]},
	"communication_times": {"B-C": 2},
	"cloud_servers": [
		{"id": "server1", "vms": ["vm1"]},
		{"id": "server2", "vms": ["vm2"]}
	],
	"ect_table": {
		"A": {"vm1": 0, "vm2": 0},
		"B": {"vm1": 4, "vm2": 6},
		"C": {"vm1": 3, "vm2": 5}
	}
}`

func (*LoadSuite) TestLoadJSON(c *check.C) {
	wf, err := Load(strings.NewReader(exampleJSON))
	c.Assert(err, check.IsNil)
	c.Check(wf.Tasks, check.DeepEquals, []TaskID{"A", "B", "C"})
	c.Check(wf.EntryTask, check.Equals, TaskID("A"))
	c.Check(wf.ExitTask, check.Equals, TaskID("C"))
	c.Check(wf.Deps["C"], check.DeepEquals, []TaskID{"B"})
	c.Check(wf.VMs(), check.DeepEquals, []VMID{"vm1", "vm2"})
	c.Check(wf.ServerOf("vm1"), check.Equals, ServerID("server1"))
	c.Check(wf.ServerOf("vm2"), check.Equals, ServerID("server2"))
	c.Check(wf.ExecTime("B", "vm2"), check.Equals, 6.0)
	c.Check(wf.MinExecTime("B"), check.Equals, 4.0)
	c.Check(wf.CommTime("B", "C"), check.Equals, 2.0)
	// Missing pairs default to 0.
	c.Check(wf.CommTime("A", "B"), check.Equals, 0.0)
	c.Check(wf.CommTime("C", "B"), check.Equals, 0.0)
}

func (*LoadSuite) TestLoadYAML(c *check.C) {
	wf, err := Load(strings.NewReader(`
tasks: [t1, t2]
entry_task: t1
exit_task: t2
dependencies:
  t2: [t1]
cloud_servers:
  - id: s1
    vms: [s1_vm1, s1_vm2]
ect_table:
  t1: {s1_vm1: 1, s1_vm2: 2}
  t2: {s1_vm1: 3, s1_vm2: 4}
`))
	c.Assert(err, check.IsNil)
	c.Check(wf.VMs(), check.DeepEquals, []VMID{"s1_vm1", "s1_vm2"})
	c.Check(wf.MinExecTime("t2"), check.Equals, 3.0)
}

func (*LoadSuite) TestVMEnumerationOrder(c *check.C) {
	// Enumeration order follows the document, not any sorted or
	// hashed order.
	wf, err := Document{
		Tasks:     []TaskID{"A"},
		EntryTask: "A",
		ExitTask:  "A",
		CloudServers: []DocumentServer{
			{ID: "s2", VMs: []VMID{"zz", "aa"}},
			{ID: "s1", VMs: []VMID{"mm"}},
		},
		ECTTable: map[TaskID]map[VMID]float64{
			"A": {"zz": 1, "aa": 1, "mm": 1},
		},
	}.Workflow()
	c.Assert(err, check.IsNil)
	c.Check(wf.VMs(), check.DeepEquals, []VMID{"zz", "aa", "mm"})
}

func (*LoadSuite) TestMalformedDependency(c *check.C) {
	for _, deps := range []map[TaskID][]TaskID{
		{"B": {"nonexistent"}},
		{"nonexistent": {"A"}},
		{"B": {"B"}},
	} {
		_, err := Document{
			Tasks:        []TaskID{"A", "B"},
			EntryTask:    "A",
			ExitTask:     "B",
			Dependencies: deps,
			CloudServers: []DocumentServer{{ID: "s1", VMs: []VMID{"vm1"}}},
			ECTTable: map[TaskID]map[VMID]float64{
				"A": {"vm1": 1},
				"B": {"vm1": 1},
			},
		}.Workflow()
		c.Check(errors.Is(err, ErrMalformedDependency), check.Equals, true, check.Commentf("deps %v: %v", deps, err))
	}
}

func (*LoadSuite) TestMissingExecutionEntry(c *check.C) {
	// Task absent from the table entirely.
	_, err := Document{
		Tasks:        []TaskID{"A", "B"},
		EntryTask:    "A",
		ExitTask:     "B",
		CloudServers: []DocumentServer{{ID: "s1", VMs: []VMID{"vm1"}}},
		ECTTable: map[TaskID]map[VMID]float64{
			"A": {"vm1": 1},
		},
	}.Workflow()
	c.Check(errors.Is(err, ErrMissingExecutionEntry), check.Equals, true)

	// (task, VM) pair absent.
	_, err = Document{
		Tasks:        []TaskID{"A"},
		EntryTask:    "A",
		ExitTask:     "A",
		CloudServers: []DocumentServer{{ID: "s1", VMs: []VMID{"vm1", "vm2"}}},
		ECTTable: map[TaskID]map[VMID]float64{
			"A": {"vm1": 1},
		},
	}.Workflow()
	c.Check(errors.Is(err, ErrMissingExecutionEntry), check.Equals, true)
}

func (*LoadSuite) TestValidationErrors(c *check.C) {
	base := func() Document {
		return Document{
			Tasks:        []TaskID{"A", "B"},
			EntryTask:    "A",
			ExitTask:     "B",
			CloudServers: []DocumentServer{{ID: "s1", VMs: []VMID{"vm1"}}},
			ECTTable: map[TaskID]map[VMID]float64{
				"A": {"vm1": 1},
				"B": {"vm1": 1},
			},
		}
	}

	doc := base()
	doc.Tasks = nil
	_, err := doc.Workflow()
	c.Check(err, check.ErrorMatches, `document does not define any tasks`)

	doc = base()
	doc.Tasks = []TaskID{"A", "A"}
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `duplicate task id "A"`)

	doc = base()
	doc.EntryTask = "nope"
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `entry task "nope" is not in the task list`)

	doc = base()
	doc.ExitTask = "nope"
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `exit task "nope" is not in the task list`)

	doc = base()
	doc.CloudServers = nil
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `document does not define any cloud servers`)

	doc = base()
	doc.CloudServers = []DocumentServer{{ID: "s1"}}
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `document does not define any VMs`)

	doc = base()
	doc.CloudServers = []DocumentServer{{ID: "s1", VMs: []VMID{"vm1"}}, {ID: "s1", VMs: []VMID{"vm2"}}}
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `duplicate cloud server id "s1"`)

	doc = base()
	doc.CloudServers = []DocumentServer{{ID: "s1", VMs: []VMID{"vm1", "vm1"}}}
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `duplicate VM id "vm1"`)

	doc = base()
	doc.ECTTable["B"]["vm1"] = -1
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `task "B" on VM "vm1": negative execution time -1`)

	doc = base()
	doc.CommunicationTimes = map[string]float64{"A-B": -2}
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `communication time "A-B": negative delay -2`)

	doc = base()
	doc.CommunicationTimes = map[string]float64{"AB": 1}
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `communication time key "AB" is not of the form "src-dst"`)

	doc = base()
	doc.CommunicationTimes = map[string]float64{"A-nope": 1}
	_, err = doc.Workflow()
	c.Check(err, check.ErrorMatches, `communication time key "A-nope" references an unknown task`)
}
