package camera

import (
	"time"

	"github.com/alexjbarnes/camera-sync/internal/models"
	"github.com/alexjbarnes/camera-sync/internal/remote"
	"golang.org/x/text/unicode/norm"
)

// Matcher decides whether a local item without a fingerprint is already
// present remotely as node.
type Matcher interface {
	Match(m models.Media, node remote.Node) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(m models.Media, node remote.Node) bool

func (f MatcherFunc) Match(m models.Media, node remote.Node) bool { return f(m, node) }

// NameSizeMTimeMatcher matches on Unicode-normalised name, exact size and
// modification time within Tolerance. Camera apps and the remote side can
// disagree on NFC vs NFD for accented names.
type NameSizeMTimeMatcher struct {
	Tolerance time.Duration
}

func (n NameSizeMTimeMatcher) Match(m models.Media, node remote.Node) bool {
	if node.Folder || m.Size != node.Size {
		return false
	}

	if norm.NFC.String(m.Name) != norm.NFC.String(node.Name) {
		return false
	}

	delta := m.Timestamp - node.MTime
	if delta < 0 {
		delta = -delta
	}

	return delta <= n.Tolerance.Milliseconds()
}

// nodeOf views a local item as a remote node so queued items can be
// compared with the same matcher.
func nodeOf(m models.Media) remote.Node {
	return remote.Node{Name: m.Name, Size: m.Size, MTime: m.Timestamp}
}
