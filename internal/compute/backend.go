package compute

// Backend runs data-parallel loops over [0, n). fn receives disjoint,
// contiguous ranges that together cover [0, n) and must only write state
// owned by its range. For returns after every range has finished.
type Backend interface {
	Name() string
	Workers() int
	For(n int, fn func(start, end int))
}

var activeBackend Backend = NewCPUBackend(0)

func SetBackend(b Backend) {
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

// AutoSelect returns a serial backend for workers == 1 and a CPU worker pool
// otherwise; workers <= 0 means one worker per CPU.
func AutoSelect(workers int) Backend {
	if workers == 1 {
		return NewSerialBackend()
	}
	return NewCPUBackend(workers)
}

// ByName resolves a backend from its configuration name.
func ByName(name string, workers int) (Backend, error) {
	switch name {
	case "", "auto":
		return AutoSelect(workers), nil
	case "serial":
		return NewSerialBackend(), nil
	case "cpu":
		return NewCPUBackend(workers), nil
	default:
		return nil, &UnknownBackendError{Name: name}
	}
}

type UnknownBackendError struct {
	Name string
}

func (e *UnknownBackendError) Error() string {
	return "unknown compute backend: " + e.Name
}
