package serial

import (
	"fmt"
	"strings"
)

// Tracker records the walk position inside a root message so errors can point
// at the offending slot. Pops happen only on success; after a failure the
// tracker holds the full path down to the slot that failed.
type Tracker struct {
	parts []string
}

func (t *Tracker) PushField(name string) {
	t.parts = append(t.parts, "["+name+"]")
}

func (t *Tracker) PushIndex(i int) {
	t.parts = append(t.parts, fmt.Sprintf("[%d]", i))
}

func (t *Tracker) PushVariant(name string) {
	t.parts = append(t.parts, "[<"+name+">]")
}

func (t *Tracker) Pop() {
	t.parts = t.parts[:len(t.parts)-1]
}

func (t *Tracker) String() string {
	return strings.Join(t.parts, "")
}
