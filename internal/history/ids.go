package history

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var adjectives = []string{
	"amber", "brisk", "calm", "crisp", "deft", "eager", "fleet", "gentle", "hardy",
	"keen", "lively", "lucid", "mellow", "nimble", "plucky", "quick", "rapid", "steady",
	"sturdy", "swift", "tidy", "vivid", "wiry", "zesty",
}

var animals = []string{
	"badger", "beaver", "bison", "crane", "falcon", "ferret", "finch", "gecko", "heron",
	"ibex", "jackal", "lynx", "marten", "newt", "ocelot", "otter", "puffin", "raven",
	"stoat", "tapir", "vole", "walrus", "wren", "yak",
}

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewBuildID returns a readable unique id like "swift_otter_V1StGXR8".
func NewBuildID() (string, error) {
	rngMu.Lock()
	adjective := adjectives[rng.Intn(len(adjectives))]
	animal := animals[rng.Intn(len(animals))]
	rngMu.Unlock()

	suffix, err := gonanoid.Generate(idAlphabet, 8)
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}
	return fmt.Sprintf("%s_%s_%s", adjective, animal, suffix), nil
}
