// Package dialogue implements the rule-based conversation engine:
// an ordered keyword table over the training academy knowledge base,
// plus the multi-step practice sub-dialogues tracked per session.
package dialogue

import (
	"fmt"
	"strings"
)

// continuationMarkers keep an active sub-dialogue alive when the user's
// input would otherwise be claimed by the keyword table.
var continuationMarkers = []string{"practice", "help me start"}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate matches one input against the knowledge base, advancing the
// session state in place. It returns ok=false when no local rule or
// sub-dialogue step applies and the caller must escalate to the remote
// knowledge base.
//
// Precedence, first match wins:
//  1. keyword rules, in table order (a match while a sub-dialogue is
//     active and no continuation marker is present counts as a topic
//     change and resets the state first);
//  2. the active sub-dialogue's (mode, step) handler;
//  3. escalation.
func (e *Engine) Evaluate(input string, st *State) (string, bool) {
	lower := strings.ToLower(input)

	idx := matchRule(lower)

	if st.Mode != ModeNormal && idx >= 0 && !containsAny(lower, continuationMarkers) {
		// Topic change mid sub-dialogue: drop the stale session.
		st.Reset()
	}

	if idx >= 0 {
		r := rules[idx]
		if r.starts != ModeNormal {
			st.Reset()
			st.Mode = r.starts
			st.Step = 1
		}
		return r.response, true
	}

	if st.Mode != ModeNormal {
		return e.advance(input, st)
	}

	return "", false
}

// advance consumes input as the answer to the active sub-dialogue step.
func (e *Engine) advance(input string, st *State) (string, bool) {
	switch st.Mode {
	case ModePromptPractice:
		switch st.Step {
		case 1:
			st.Data["initialPrompt"] = input
			st.Step = 2
			return "Good start! Now, what's the *tone* you're aiming for? Is it casual, formal, exciting, or something else?", true
		case 2:
			prompt := st.Data["initialPrompt"]
			st.Reset()
			return fmt.Sprintf("Excellent! By adding details like '%s' and a '%s' tone, your prompt is much more descriptive. This is great 'Description' in action!", prompt, input), true
		}

	case ModeSermonPromptAssist:
		switch st.Step {
		case 1:
			st.Data["scripture"] = input
			st.Step = 2
			return fmt.Sprintf("Okay, %s. Who is the target audience for this sermon (e.g., youth, general congregation, new members)?", input), true
		case 2:
			st.Data["audience"] = input
			st.Step = 3
			return "Got it. What are 2-3 key theological points or themes you want to ensure are included in the sermon outline?", true
		case 3:
			scripture := st.Data["scripture"]
			audience := st.Data["audience"]
			st.Reset()
			return fmt.Sprintf("Perfect! With scripture: %s, audience: %s, and themes: %s, you have a strong prompt for a sermon outline. Now you can use the 'Sermon Outline Generator' template in Solace AI!", scripture, audience, input), true
		}

	case ModeEthicsDilemma:
		if st.Step == 1 {
			st.Reset()
			return "That's a very insightful point! When reviewing AI-drafted prayers for sensitive situations, ensuring **Spiritual Authenticity** and **Human Accountability** are paramount. You must discern if it truly reflects your pastoral heart and theological stance. How would you ensure transparency if you used parts of it?", true
		}
	}

	// Unreachable step value: recover rather than trap the session.
	st.Reset()
	return "", false
}

func matchRule(lower string) int {
	for i, r := range rules {
		if containsAny(lower, r.triggers) {
			return i
		}
	}
	return -1
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
