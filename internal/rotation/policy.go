package rotation

import (
	"fmt"
	"strings"
)

// Action is how the controller reacts to a device being added or removed.
type Action string

const (
	// ActionRefresh re-enumerates immediately.
	ActionRefresh Action = "refresh"

	// ActionIgnore keeps the current list until the next explicit refresh.
	// A removed device that was selected still clears the selection.
	ActionIgnore Action = "ignore"
)

// ParseAction parses a reconcile action from config.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case "", ActionRefresh:
		return ActionRefresh, nil
	case ActionIgnore:
		return ActionIgnore, nil
	default:
		return "", fmt.Errorf("invalid reconcile action %q (expected refresh or ignore)", s)
	}
}

// Policy selects the reaction to hotplug notifications.
// State changes always refresh and default changes never do.
type Policy struct {
	OnAdded   Action
	OnRemoved Action
}

// DefaultPolicy refreshes on every hotplug event.
func DefaultPolicy() Policy {
	return Policy{OnAdded: ActionRefresh, OnRemoved: ActionRefresh}
}
