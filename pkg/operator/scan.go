package operator

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// AllNodeScan binds every node in storage, one per consume, to its target
// pattern node.
type AllNodeScan struct {
	storage graphmodel.Storage
	node    *graphmodel.Node
	iter    graphmodel.NodeIterator
}

// NewAllNodeScan creates a full scan binding into the given pattern node.
func NewAllNodeScan(storage graphmodel.Storage, node *graphmodel.Node) (*AllNodeScan, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	if node == nil {
		return nil, fmt.Errorf("target node cannot be nil")
	}
	return &AllNodeScan{storage: storage, node: node}, nil
}

func (s *AllNodeScan) Type() Type         { return TypeAllNodeScan }
func (s *AllNodeScan) Name() string       { return "All Node Scan" }
func (s *AllNodeScan) Modifies() []string { return []string{s.node.Alias} }

func (s *AllNodeScan) Consume(g *graphmodel.QueryGraph) Result {
	if s.iter == nil {
		s.iter = s.storage.Nodes()
	}

	n, ok := s.iter.Next()
	if !ok {
		return Depleted
	}
	s.node.Bound = n
	return OK
}

// Reset rewinds the storage iterator.
func (s *AllNodeScan) Reset() Result {
	if s.iter != nil {
		s.iter.Reset()
	}
	return OK
}

func (s *AllNodeScan) Free() {
	s.iter = nil
}

// NodeByLabelScan binds every node carrying a given label, one per
// consume, to its target pattern node.
type NodeByLabelScan struct {
	storage graphmodel.Storage
	node    *graphmodel.Node
	label   string
	iter    graphmodel.NodeIterator
}

// NewNodeByLabelScan creates a label-indexed scan binding into the given
// pattern node.
func NewNodeByLabelScan(storage graphmodel.Storage, node *graphmodel.Node, label string) (*NodeByLabelScan, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	if node == nil {
		return nil, fmt.Errorf("target node cannot be nil")
	}
	if label == "" {
		return nil, fmt.Errorf("label cannot be empty")
	}
	return &NodeByLabelScan{storage: storage, node: node, label: label}, nil
}

func (s *NodeByLabelScan) Type() Type         { return TypeLabelScan }
func (s *NodeByLabelScan) Name() string       { return "Node By Label Scan" }
func (s *NodeByLabelScan) Modifies() []string { return []string{s.node.Alias} }

// Label returns the label this scan iterates.
func (s *NodeByLabelScan) Label() string { return s.label }

func (s *NodeByLabelScan) Consume(g *graphmodel.QueryGraph) Result {
	if s.iter == nil {
		s.iter = s.storage.NodesByLabel(s.label)
	}

	n, ok := s.iter.Next()
	if !ok {
		return Depleted
	}
	s.node.Bound = n
	return OK
}

// Reset rewinds the label store iterator.
func (s *NodeByLabelScan) Reset() Result {
	if s.iter != nil {
		s.iter.Reset()
	}
	return OK
}

func (s *NodeByLabelScan) Free() {
	s.iter = nil
}
