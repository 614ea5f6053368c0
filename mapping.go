package main

// Mapping is the session's source-to-target account association. It is the
// only mutable state the review loop shares, lives exactly as long as one
// conversion session, and is read in full at export time. Targets are chart
// codes or free-form manual codes; no validation happens here.
type Mapping struct {
	targets map[string]string
}

func NewMapping() *Mapping {
	return &Mapping{targets: make(map[string]string)}
}

// Set associates a target code with a source id, overwriting any previous
// choice.
func (m *Mapping) Set(sourceID, targetCode string) {
	m.targets[sourceID] = targetCode
}

// Clear reverts a source id to unmapped.
func (m *Mapping) Clear(sourceID string) {
	delete(m.targets, sourceID)
}

func (m *Mapping) Get(sourceID string) (string, bool) {
	code, has := m.targets[sourceID]
	return code, has
}

func (m *Mapping) Count() int {
	return len(m.targets)
}

// Complete reports whether every discovered account has a target.
func (m *Mapping) Complete(accounts []SourceAccount) bool {
	return m.Pending(accounts) == 0
}

func (m *Mapping) Pending(accounts []SourceAccount) int {
	var pending int
	for _, acc := range accounts {
		if _, has := m.targets[acc.ID]; !has {
			pending++
		}
	}
	return pending
}
