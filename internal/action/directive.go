// Package action parses action directives out of assistant responses and
// executes them against the collection stores.
package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Decode errors. ErrNoDirective means the text carries no directive at all,
// which callers treat as a plain conversational reply. The other two mean the
// model attempted a directive and got it wrong; they are surfaced, never
// silently dropped.
var (
	ErrNoDirective        = errors.New("no action directive in response")
	ErrMalformedDirective = errors.New("malformed action directive")
	ErrUnknownAction      = errors.New("unknown action type")
)

// ActionType discriminates the directive union.
type ActionType string

const (
	ActionAddMaintenanceTask  ActionType = "add_maintenance_task"
	ActionAddInventoryItem    ActionType = "add_inventory_item"
	ActionAddProject          ActionType = "add_project"
	ActionAddVendor           ActionType = "add_vendor"
	ActionNavigateTo          ActionType = "navigate_to"
	ActionCompleteTask        ActionType = "complete_task"
	ActionUpdateInventoryItem ActionType = "update_inventory_item"
	ActionAddWarranty         ActionType = "add_warranty"
	ActionSearchDocuments     ActionType = "search_documents"
	ActionShowContext         ActionType = "show_context"
)

type TaskParams struct {
	Title      string `json:"title"`
	Category   string `json:"category,omitempty"`
	Priority   string `json:"priority,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
	Recurrence string `json:"recurrence,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type ItemParams struct {
	Name         string   `json:"name"`
	Category     string   `json:"category,omitempty"`
	Location     string   `json:"location,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	Model        string   `json:"model,omitempty"`
	SerialNumber string   `json:"serial_number,omitempty"`
	PurchaseDate string   `json:"purchase_date,omitempty"`
	Price        *float64 `json:"price,omitempty"`
}

type ProjectParams struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
}

type VendorParams struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

type NavigateParams struct {
	Route string `json:"route"`
}

type CompleteTaskParams struct {
	TaskTitle  string   `json:"task_title"`
	ActualCost *float64 `json:"actual_cost,omitempty"`
}

type UpdateItemParams struct {
	ItemID string         `json:"item_id"`
	Fields map[string]any `json:"fields,omitempty"`
}

type WarrantyParams struct {
	ItemName  string `json:"item_name"`
	Provider  string `json:"provider,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type SearchParams struct {
	Query string `json:"query"`
}

// Directive is the decoded action union. Exactly one params field matching
// Type is set.
type Directive struct {
	Type         ActionType          `json:"action"`
	Task         *TaskParams         `json:"task,omitempty"`
	Item         *ItemParams         `json:"item,omitempty"`
	Project      *ProjectParams      `json:"project,omitempty"`
	Vendor       *VendorParams       `json:"vendor,omitempty"`
	Navigate     *NavigateParams     `json:"navigate,omitempty"`
	CompleteTask *CompleteTaskParams `json:"complete_task,omitempty"`
	UpdateItem   *UpdateItemParams   `json:"update_item,omitempty"`
	Warranty     *WarrantyParams     `json:"warranty,omitempty"`
	Search       *SearchParams       `json:"search,omitempty"`
}

// envelope is the wire shape the model emits: {"action": "...", "params": {...}}.
type envelope struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

// DecodeDirective extracts and validates an action directive from free-form
// model text. The grammar is singular: a fenced code block is preferred, a
// bare JSON object is accepted, and whichever is found is decoded exactly
// once. A located directive that fails validation is an error, not a silent
// miss.
func DecodeDirective(text string) (*Directive, error) {
	jsonText, found := locateJSON(text)
	if !found {
		return nil, ErrNoDirective
	}

	var env envelope
	if err := json.Unmarshal([]byte(jsonText), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}
	if env.Action == "" {
		// A JSON object without an action key is ordinary content.
		return nil, ErrNoDirective
	}

	d := &Directive{Type: ActionType(env.Action)}
	params := env.Params
	if params == nil {
		params = json.RawMessage("{}")
	}

	var err error
	switch d.Type {
	case ActionAddMaintenanceTask:
		d.Task = &TaskParams{}
		err = json.Unmarshal(params, d.Task)
	case ActionAddInventoryItem:
		d.Item = &ItemParams{}
		err = json.Unmarshal(params, d.Item)
	case ActionAddProject:
		d.Project = &ProjectParams{}
		err = json.Unmarshal(params, d.Project)
	case ActionAddVendor:
		d.Vendor = &VendorParams{}
		err = json.Unmarshal(params, d.Vendor)
	case ActionNavigateTo:
		d.Navigate = &NavigateParams{}
		err = json.Unmarshal(params, d.Navigate)
	case ActionCompleteTask:
		d.CompleteTask = &CompleteTaskParams{}
		err = json.Unmarshal(params, d.CompleteTask)
	case ActionUpdateInventoryItem:
		d.UpdateItem = &UpdateItemParams{}
		err = json.Unmarshal(params, d.UpdateItem)
	case ActionAddWarranty:
		d.Warranty = &WarrantyParams{}
		err = json.Unmarshal(params, d.Warranty)
	case ActionSearchDocuments:
		d.Search = &SearchParams{}
		err = json.Unmarshal(params, d.Search)
	case ActionShowContext:
		// No params.
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: params for %s: %v", ErrMalformedDirective, d.Type, err)
	}

	return d, nil
}

// locateJSON finds the directive candidate in model text. A fenced block
// takes priority over a bare object so prose braces around a fence cannot
// shadow it.
func locateJSON(text string) (string, bool) {
	if idx := strings.Index(text, "```"); idx != -1 {
		s := text[idx+3:]
		if strings.HasPrefix(s, "json") {
			s = s[4:]
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = strings.TrimSpace(s[:end])
			if strings.HasPrefix(s, "{") {
				return s, true
			}
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// Encode renders a directive into the fenced wire form the model is prompted
// to produce.
func Encode(actionType ActionType, params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(envelope{Action: string(actionType), Params: raw})
	if err != nil {
		return "", err
	}
	return "```json\n" + string(body) + "\n```", nil
}
