package protocol

import "fmt"

// MutationOp is the type of a host tree mutation.
type MutationOp uint8

// Mutation operation constants. They mirror the host.Host capabilities
// one-to-one.
const (
	OpCreateElement  MutationOp = 0x01 // Create element node
	OpCreateText     MutationOp = 0x02 // Create text node
	OpSetProperty    MutationOp = 0x03 // Set property
	OpClearProperty  MutationOp = 0x04 // Reset property to default
	OpAddListener    MutationOp = 0x05 // Register event listener
	OpRemoveListener MutationOp = 0x06 // Unregister event listener
	OpAppendChild    MutationOp = 0x07 // Append child to parent
	OpRemoveChild    MutationOp = 0x08 // Remove child from parent
)

// String returns the string representation of the mutation operation.
func (op MutationOp) String() string {
	switch op {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpSetProperty:
		return "SetProperty"
	case OpClearProperty:
		return "ClearProperty"
	case OpAddListener:
		return "AddListener"
	case OpRemoveListener:
		return "RemoveListener"
	case OpAppendChild:
		return "AppendChild"
	case OpRemoveChild:
		return "RemoveChild"
	default:
		return "Unknown"
	}
}

// Mutation is a single host tree operation addressed by node IDs.
type Mutation struct {
	Op       MutationOp
	HID      string // Target node
	ParentID string // Parent node for AppendChild/RemoveChild
	Key      string // Tag, property name or event name
	Value    string // Property value or text content
}

// String renders the mutation for logs and test output.
func (m Mutation) String() string {
	switch m.Op {
	case OpCreateElement:
		return fmt.Sprintf("%s %s <%s>", m.Op, m.HID, m.Key)
	case OpCreateText:
		return fmt.Sprintf("%s %s %q", m.Op, m.HID, m.Value)
	case OpSetProperty:
		return fmt.Sprintf("%s %s %s=%q", m.Op, m.HID, m.Key, m.Value)
	case OpClearProperty, OpAddListener, OpRemoveListener:
		return fmt.Sprintf("%s %s %s", m.Op, m.HID, m.Key)
	case OpAppendChild, OpRemoveChild:
		return fmt.Sprintf("%s %s -> %s", m.Op, m.HID, m.ParentID)
	default:
		return fmt.Sprintf("%s %s", m.Op, m.HID)
	}
}

// CommitFrame is the batch of mutations applied by one commit.
type CommitFrame struct {
	Seq        uint64 // Monotonic per recorder
	Generation uint64 // Render generation that produced the commit
	Mutations  []Mutation
}

// EncodeCommit encodes a commit frame to bytes.
func EncodeCommit(cf *CommitFrame) []byte {
	e := NewEncoder()
	EncodeCommitTo(e, cf)
	return e.Bytes()
}

// EncodeCommitTo encodes a commit frame using the provided encoder.
func EncodeCommitTo(e *Encoder, cf *CommitFrame) {
	e.WriteUvarint(cf.Seq)
	e.WriteUvarint(cf.Generation)
	e.WriteUvarint(uint64(len(cf.Mutations)))

	for i := range cf.Mutations {
		encodeMutation(e, &cf.Mutations[i])
	}
}

func encodeMutation(e *Encoder, m *Mutation) {
	e.WriteByte(byte(m.Op))
	e.WriteString(m.HID)

	switch m.Op {
	case OpCreateElement:
		e.WriteString(m.Key)
	case OpCreateText:
		e.WriteString(m.Value)
	case OpSetProperty:
		e.WriteString(m.Key)
		e.WriteString(m.Value)
	case OpClearProperty, OpAddListener, OpRemoveListener:
		e.WriteString(m.Key)
	case OpAppendChild, OpRemoveChild:
		e.WriteString(m.ParentID)
	}
}

// DecodeCommit decodes a commit frame from bytes.
func DecodeCommit(data []byte) (*CommitFrame, error) {
	return DecodeCommitFrom(NewDecoder(data))
}

// DecodeCommitFrom decodes a commit frame using the provided decoder.
func DecodeCommitFrom(d *Decoder) (*CommitFrame, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	gen, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	cf := &CommitFrame{
		Seq:        seq,
		Generation: gen,
		Mutations:  make([]Mutation, count),
	}
	for i := 0; i < count; i++ {
		if err := decodeMutation(d, &cf.Mutations[i]); err != nil {
			return nil, err
		}
	}
	return cf, nil
}

func decodeMutation(d *Decoder, m *Mutation) error {
	op, err := d.ReadByte()
	if err != nil {
		return err
	}
	m.Op = MutationOp(op)

	if m.HID, err = d.ReadString(); err != nil {
		return err
	}

	switch m.Op {
	case OpCreateElement:
		m.Key, err = d.ReadString()
	case OpCreateText:
		m.Value, err = d.ReadString()
	case OpSetProperty:
		if m.Key, err = d.ReadString(); err != nil {
			return err
		}
		m.Value, err = d.ReadString()
	case OpClearProperty, OpAddListener, OpRemoveListener:
		m.Key, err = d.ReadString()
	case OpAppendChild, OpRemoveChild:
		m.ParentID, err = d.ReadString()
	default:
		return fmt.Errorf("protocol: unknown mutation op 0x%02x", op)
	}
	return err
}
