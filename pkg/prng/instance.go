package prng

import "sync"

// the one service shared by every consumer in the process
var shared = struct {
	mu  sync.Mutex
	alg Algorithm
	svc *Service
}{alg: DefaultAlgorithm}

// GetInstance returns the process-wide service, creating it on first use.
func GetInstance() *Service {
	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.svc == nil {
		svc, err := New(shared.alg)
		if err != nil {
			panic("prng: failed to initialise shared instance: " + err.Error())
		}
		shared.svc = svc
	}
	return shared.svc
}

// Configure picks the algorithm of the shared instance. It must run before
// the first GetInstance; afterwards only the algorithm already in use is
// accepted.
func Configure(alg Algorithm) error {
	if _, err := NewGenerator(alg); err != nil {
		return err
	}

	shared.mu.Lock()
	defer shared.mu.Unlock()

	if shared.svc != nil {
		if shared.svc.alg == alg {
			return nil
		}
		return ErrAlreadyInitialised
	}
	shared.alg = alg
	return nil
}
