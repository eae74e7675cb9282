// Package classify decides which candidate types are contract types:
// interfaces with exactly one abstract method, usable as lambda targets.
package classify

import (
	"context"
	"log"
	"runtime"
	"sort"
	"sync"

	"github.com/mvp-joe/lambdalens/internal/metadata"
)

// IsContractType reports whether a resolved type is a contract type: an
// interface with exactly one declared method remaining after discarding
// synthetic, default, and static methods. Non-interface types never qualify.
func IsContractType(rec *metadata.TypeRecord) bool {
	if rec == nil || !rec.IsInterface {
		return false
	}

	abstract := 0
	for _, m := range rec.Methods {
		if m.IsSynthetic || m.IsDefault || m.IsStatic {
			continue
		}
		abstract++
		if abstract > 1 {
			return false
		}
	}
	return abstract == 1
}

// Classifier classifies candidate types using a metadata provider.
type Classifier struct {
	provider metadata.Provider
	workers  int
}

// New creates a Classifier. workers <= 0 uses GOMAXPROCS.
func New(provider metadata.Provider, workers int) *Classifier {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Classifier{provider: provider, workers: workers}
}

// IsContract resolves a single type and classifies it. An unresolvable type
// is non-qualifying; the failure is logged and never propagated.
func (c *Classifier) IsContract(ctx context.Context, qualifiedName string) bool {
	rec, err := c.provider.Resolve(ctx, qualifiedName)
	if err != nil {
		log.Printf("Type not resolvable: %s", qualifiedName)
		return false
	}
	return IsContractType(rec)
}

// ContractTypes classifies every candidate name and returns the sorted,
// deduplicated list of contract types. Classification of each name is pure
// and order-independent, so the work fans out across a bounded worker pool;
// the final sort makes the result reproducible regardless of scheduling.
func (c *Classifier) ContractTypes(ctx context.Context, candidates []string) []string {
	jobs := make(chan string)
	results := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				if c.IsContract(ctx, name) {
					results <- name
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, name := range candidates {
			select {
			case jobs <- name:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	seen := make(map[string]struct{})
	var contracts []string
	for name := range results {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		contracts = append(contracts, name)
	}

	sort.Strings(contracts)
	return contracts
}
