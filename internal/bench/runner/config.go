package runner

const DefaultWorkers = 1

type Config struct {
	// Workers overrides the pipeline's own worker count when positive.
	Workers int
}

func DefaultConfig() Config {
	return Config{Workers: 0}
}

func (c Config) workersFor(specWorkers int) int {
	if c.Workers > 0 {
		return c.Workers
	}
	if specWorkers > 0 {
		return specWorkers
	}
	return DefaultWorkers
}
