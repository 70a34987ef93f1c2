package fiber

import (
	"sort"

	"github.com/vango-dev/fiber/pkg/host"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// opKind is a host mutation planned by the engine.
type opKind uint8

const (
	opCreateNode opKind = iota
	opCreateText
	opRemoveListener
	opClearProperty
	opSetProperty
	opAddListener
	opAppendChild
	opRemoveChild
)

// String returns the metric label of the op.
func (k opKind) String() string {
	switch k {
	case opCreateNode:
		return "create_node"
	case opCreateText:
		return "create_text"
	case opRemoveListener:
		return "remove_listener"
	case opClearProperty:
		return "clear_property"
	case opSetProperty:
		return "set_property"
	case opAddListener:
		return "add_listener"
	case opAppendChild:
		return "append_child"
	case opRemoveChild:
		return "remove_child"
	default:
		return "unknown"
	}
}

// propOp is one property or listener change on a single node.
type propOp struct {
	kind  opKind
	name  string // property or event name
	value any    // property value or handler
}

func isListener(key string) bool {
	return vdom.IsEventKey(key)
}

func isProperty(key string) bool {
	return key != vdom.ChildrenKey && !vdom.IsEventKey(key)
}

func sortedKeys(p vdom.Props) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// diffProps returns the changes that turn a node rendered with prev into
// one rendered with next, in four phases: remove stale listeners, clear
// removed properties, set changed properties, add new listeners. Values are
// compared with host.Same, so a re-created closure counts as a new handler.
// Keys are visited in sorted order within each phase.
func diffProps(prev, next vdom.Props) []propOp {
	var ops []propOp
	prevKeys, nextKeys := sortedKeys(prev), sortedKeys(next)

	for _, k := range prevKeys {
		pv := prev[k]
		if !isListener(k) || pv == nil {
			continue
		}
		if nv, ok := next[k]; !ok || !host.Same(pv, nv) {
			ops = append(ops, propOp{kind: opRemoveListener, name: vdom.EventName(k), value: pv})
		}
	}

	for _, k := range prevKeys {
		if !isProperty(k) {
			continue
		}
		if _, ok := next[k]; !ok {
			ops = append(ops, propOp{kind: opClearProperty, name: k})
		}
	}

	for _, k := range nextKeys {
		if !isProperty(k) {
			continue
		}
		nv := next[k]
		if pv, ok := prev[k]; !ok || !host.Same(pv, nv) {
			ops = append(ops, propOp{kind: opSetProperty, name: k, value: nv})
		}
	}

	for _, k := range nextKeys {
		nv := next[k]
		if !isListener(k) || nv == nil {
			continue
		}
		if pv, ok := prev[k]; !ok || !host.Same(pv, nv) {
			ops = append(ops, propOp{kind: opAddListener, name: vdom.EventName(k), value: nv})
		}
	}

	return ops
}
