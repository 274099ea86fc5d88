package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// depthUnresolved is assigned to accounts whose ancestor chain cannot be
// walked to a root (broken reference or cycle). They sort last so a
// malformed branch never corrupts well-formed subtrees.
const depthUnresolved = 1 << 20

// Chart is an immutable index over a company's accounts. Parents are
// stored as keys, never as live references, so traversal is always an
// explicit iterative walk.
type Chart struct {
	accounts []Account
	byID     map[uuid.UUID]int
	byCode   map[string]int
	children map[uuid.UUID][]uuid.UUID
}

// NewChart builds the index. The input slice is copied; later mutations
// of the source do not affect the chart.
func NewChart(accounts []Account) *Chart {
	c := &Chart{
		accounts: make([]Account, len(accounts)),
		byID:     make(map[uuid.UUID]int, len(accounts)),
		byCode:   make(map[string]int, len(accounts)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	copy(c.accounts, accounts)
	for i, acc := range c.accounts {
		c.byID[acc.ID] = i
		c.byCode[acc.Code] = i
		if acc.ParentID != nil {
			c.children[*acc.ParentID] = append(c.children[*acc.ParentID], acc.ID)
		}
	}
	return c
}

// Accounts returns all accounts in insertion order.
func (c *Chart) Accounts() []Account {
	out := make([]Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

// Len returns the number of accounts.
func (c *Chart) Len() int {
	return len(c.accounts)
}

// ByID looks an account up by identity.
func (c *Chart) ByID(id uuid.UUID) (Account, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Account{}, false
	}
	return c.accounts[i], true
}

// ByCode looks an account up by its hierarchical code.
func (c *Chart) ByCode(code string) (Account, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Account{}, false
	}
	return c.accounts[i], true
}

// Children returns the direct child ids of an account.
func (c *Chart) Children(id uuid.UUID) []uuid.UUID {
	return c.children[id]
}

// HasChildren reports whether the account is referenced as a parent.
func (c *Chart) HasChildren(id uuid.UUID) bool {
	return len(c.children[id]) > 0
}

// Depth returns the distance from the account to its root. Accounts with
// a broken or circular ancestor chain get depthUnresolved.
func (c *Chart) Depth(id uuid.UUID) int {
	acc, ok := c.ByID(id)
	if !ok {
		return depthUnresolved
	}
	depth := 0
	visited := map[uuid.UUID]struct{}{acc.ID: {}}
	for acc.ParentID != nil {
		parent, ok := c.ByID(*acc.ParentID)
		if !ok {
			return depthUnresolved
		}
		if _, seen := visited[parent.ID]; seen {
			return depthUnresolved
		}
		visited[parent.ID] = struct{}{}
		acc = parent
		depth++
	}
	return depth
}

// DeepestFirst returns all accounts ordered deepest first. A single pass
// in this order guarantees every account is finalized before its parent
// reads it, so tree roll-up needs no recursion and no fixed-point
// iteration. Ties break on code for determinism.
func (c *Chart) DeepestFirst() []Account {
	type depthAccount struct {
		Account
		depth int
	}
	ordered := make([]depthAccount, 0, len(c.accounts))
	for _, acc := range c.accounts {
		ordered = append(ordered, depthAccount{Account: acc, depth: c.Depth(acc.ID)})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].depth != ordered[j].depth {
			return ordered[i].depth > ordered[j].depth
		}
		return ordered[i].Code < ordered[j].Code
	})
	out := make([]Account, len(ordered))
	for i, da := range ordered {
		out[i] = da.Account
	}
	return out
}

// Resolvable reports whether the account's ancestor chain reaches a root.
func (c *Chart) Resolvable(id uuid.UUID) bool {
	return c.Depth(id) < depthUnresolved
}

// Subtree returns the ids of all analytic accounts under (and including)
// the given account, walking children iteratively with a visited guard.
func (c *Chart) Subtree(rootID uuid.UUID) []uuid.UUID {
	var analytic []uuid.UUID
	visited := make(map[uuid.UUID]struct{})
	stack := []uuid.UUID{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[id]; seen {
			continue
		}
		visited[id] = struct{}{}
		if acc, ok := c.ByID(id); ok && acc.Analytic() {
			analytic = append(analytic, id)
		}
		stack = append(stack, c.children[id]...)
	}
	return analytic
}
