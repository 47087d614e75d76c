// Copyright (C) The Arvados Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package workflow

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ghodss/yaml"
)

// Errors that invalidate an input document. Load wraps them with
// positional detail; match with errors.Is.
var (
	ErrMalformedDependency   = errors.New("dependency references unknown task")
	ErrMissingExecutionEntry = errors.New("execution time table entry missing")
)

// Document is the wire format of a workflow input document. It may be
// given as JSON or YAML.
type Document struct {
	Tasks              []TaskID                    `json:"tasks"`
	EntryTask          TaskID                      `json:"entry_task"`
	ExitTask           TaskID                      `json:"exit_task"`
	Dependencies       map[TaskID][]TaskID         `json:"dependencies"`
	CommunicationTimes map[string]float64          `json:"communication_times"`
	CloudServers       []DocumentServer            `json:"cloud_servers"`
	ECTTable           map[TaskID]map[VMID]float64 `json:"ect_table"`
}

// DocumentServer is a cloud server entry in an input document.
type DocumentServer struct {
	ID  ServerID `json:"id"`
	VMs []VMID   `json:"vms"`
}

// Load reads a workflow document (JSON or YAML) and returns the
// validated, immutable model.
func Load(rdr io.Reader) (*Workflow, error) {
	buf, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}
	var doc Document
	err = yaml.Unmarshal(buf, &doc)
	if err != nil {
		return nil, err
	}
	return doc.Workflow()
}

// Workflow validates the document and builds the model.
func (doc Document) Workflow() (*Workflow, error) {
	if len(doc.Tasks) == 0 {
		return nil, errors.New("document does not define any tasks")
	}
	known := make(map[TaskID]bool, len(doc.Tasks))
	for _, t := range doc.Tasks {
		if known[t] {
			return nil, fmt.Errorf("duplicate task id %q", t)
		}
		known[t] = true
	}
	if !known[doc.EntryTask] {
		return nil, fmt.Errorf("entry task %q is not in the task list", doc.EntryTask)
	}
	if !known[doc.ExitTask] {
		return nil, fmt.Errorf("exit task %q is not in the task list", doc.ExitTask)
	}

	deps := make(map[TaskID][]TaskID, len(doc.Dependencies))
	for t, dd := range doc.Dependencies {
		if !known[t] {
			return nil, fmt.Errorf("dependency map entry for %q: %w", t, ErrMalformedDependency)
		}
		for _, d := range dd {
			if !known[d] {
				return nil, fmt.Errorf("task %q depends on %q: %w", t, d, ErrMalformedDependency)
			}
			if d == t {
				return nil, fmt.Errorf("task %q depends on itself: %w", t, ErrMalformedDependency)
			}
		}
		deps[t] = append([]TaskID(nil), dd...)
	}

	if len(doc.CloudServers) == 0 {
		return nil, errors.New("document does not define any cloud servers")
	}
	servers := make([]CloudServer, 0, len(doc.CloudServers))
	vmServer := make(map[VMID]ServerID)
	var vmOrder []VMID
	seenServer := make(map[ServerID]bool)
	for _, srv := range doc.CloudServers {
		if seenServer[srv.ID] {
			return nil, fmt.Errorf("duplicate cloud server id %q", srv.ID)
		}
		seenServer[srv.ID] = true
		for _, vm := range srv.VMs {
			if _, dup := vmServer[vm]; dup {
				return nil, fmt.Errorf("duplicate VM id %q", vm)
			}
			vmServer[vm] = srv.ID
			vmOrder = append(vmOrder, vm)
		}
		servers = append(servers, CloudServer{ID: srv.ID, VMs: append([]VMID(nil), srv.VMs...)})
	}
	if len(vmOrder) == 0 {
		return nil, errors.New("document does not define any VMs")
	}

	ect := make(map[TaskID]map[VMID]float64, len(doc.Tasks))
	for _, t := range doc.Tasks {
		row, ok := doc.ECTTable[t]
		if !ok {
			return nil, fmt.Errorf("task %q: %w", t, ErrMissingExecutionEntry)
		}
		ect[t] = make(map[VMID]float64, len(vmOrder))
		for _, vm := range vmOrder {
			d, ok := row[vm]
			if !ok {
				return nil, fmt.Errorf("task %q on VM %q: %w", t, vm, ErrMissingExecutionEntry)
			}
			if d < 0 {
				return nil, fmt.Errorf("task %q on VM %q: negative execution time %v", t, vm, d)
			}
			ect[t][vm] = d
		}
	}

	comm := make(map[TaskPair]float64, len(doc.CommunicationTimes))
	for key, d := range doc.CommunicationTimes {
		from, to, ok := strings.Cut(key, "-")
		if !ok {
			return nil, fmt.Errorf("communication time key %q is not of the form \"src-dst\"", key)
		}
		if !known[TaskID(from)] || !known[TaskID(to)] {
			return nil, fmt.Errorf("communication time key %q references an unknown task", key)
		}
		if d < 0 {
			return nil, fmt.Errorf("communication time %q: negative delay %v", key, d)
		}
		comm[TaskPair{From: TaskID(from), To: TaskID(to)}] = d
	}

	return &Workflow{
		Tasks:     append([]TaskID(nil), doc.Tasks...),
		EntryTask: doc.EntryTask,
		ExitTask:  doc.ExitTask,
		Deps:      deps,
		CommTimes: comm,
		Servers:   servers,
		ECT:       ect,
		vmOrder:   vmOrder,
		vmServer:  vmServer,
	}, nil
}
