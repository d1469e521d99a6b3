package pacing

import "sync"

// The process-wide default agent. It exists so call sites that do not care
// about policy can omit the Agent parameter; hosts that do care install
// their own via SetDefault during startup and may still pass per-call
// overrides. Until a host installs one there is no tick loop to protect, so
// the initial default never suspends.
var (
	defaultMu    sync.RWMutex
	defaultAgent Agent = NewUninterruptedAgent(nil)
)

// Default returns the current process-wide agent.
func Default() Agent {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultAgent
}

// SetDefault installs a as the process-wide agent. Passing nil is ignored.
// Intended to be called once from host initialization, before conversions
// are in flight; swapping mid-flight only affects scheduling of units not
// yet decided.
func SetDefault(a Agent) {
	if a == nil {
		return
	}
	defaultMu.Lock()
	defaultAgent = a
	defaultMu.Unlock()
}

// ResetDefault restores the initial never-suspending default, for teardown
// and tests.
func ResetDefault() {
	defaultMu.Lock()
	defaultAgent = NewUninterruptedAgent(nil)
	defaultMu.Unlock()
}
