package core

// Status tells the host whether a node wants to keep being scheduled.
type Status int

const (
	// StatusContinue asks the host to keep calling the node.
	StatusContinue Status = iota
	// StatusFree reports that the node halted and can be removed.
	StatusFree
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusContinue:
		return "continue"
	case StatusFree:
		return "free"
	default:
		return "unknown"
	}
}

// Port describes one input or output of a node. Default is used when an
// input is left unconnected.
type Port struct {
	Name    string
	Default float64
}

// PortIndex returns the index of the port called name, or -1.
func PortIndex(ports []Port, name string) int {
	for i, p := range ports {
		if p.Name == name {
			return i
		}
	}

	return -1
}

// Block carries one processing call worth of port buffers.
//
// Inputs holds audio and control ports in the node's declared order, one
// value per sample. Outputs are written by the node. All slices share the
// same length.
type Block struct {
	SampleRate float64
	Inputs     [][]float64
	Outputs    [][]float64
}

// Len returns the number of frames in the block.
func (b *Block) Len() int {
	if len(b.Outputs) > 0 {
		return len(b.Outputs[0])
	}

	if len(b.Inputs) > 0 {
		return len(b.Inputs[0])
	}

	return 0
}

// Input returns input port i, or nil when the port is not connected.
func (b *Block) Input(i int) []float64 {
	if i < 0 || i >= len(b.Inputs) {
		return nil
	}

	return b.Inputs[i]
}

// Output returns output port i, or nil when it does not exist.
func (b *Block) Output(i int) []float64 {
	if i < 0 || i >= len(b.Outputs) {
		return nil
	}

	return b.Outputs[i]
}

// Node is the contract every processing component satisfies so a host can
// drive strings, delays and reverbs uniformly.
type Node interface {
	// Init allocates sample-rate dependent state. Not real-time safe.
	Init(sampleRate float64, blockSize int) error
	// ProcessBlock renders one block. It must not allocate.
	ProcessBlock(b *Block) Status
	// Reset clears all signal state while keeping the configuration.
	Reset()
}
