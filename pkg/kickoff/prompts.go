package kickoff

import "threadloom/pkg/models"

// rolePrompts introduce each discipline at the top of a kickoff body.
var rolePrompts = map[models.Role]string{
	models.RoleHypothesisGenerator: "You are the hypothesis generator for this research thread. " +
		"Propose competing mechanistic explanations for the observations, and always " +
		"include a third alternative that is deliberately distinct from the two most " +
		"obvious candidates.",
	models.RoleTestDesigner: "You are the test designer for this research thread. " +
		"Design experiments that discriminate between the live hypotheses rather than " +
		"merely confirming one of them.",
	models.RoleAdversarialCritic: "You are the adversarial critic for this research thread. " +
		"Attack the weakest links: scale mismatches, unexamined anomalies, and " +
		"overconfident inferences.",
}

// defaultOutputs is the role-specific "Requested Outputs" text injected when
// the caller supplies no custom text. Each default emphasizes its role's
// discipline.
var defaultOutputs = map[models.Role]string{
	models.RoleHypothesisGenerator: "- At least two competing hypotheses, each with a named claim and a mechanism.\n" +
		"- A third alternative distinct from both obvious candidates.\n" +
		"- For each hypothesis: what evidence would most quickly falsify it.",
	models.RoleTestDesigner: "- Discriminative tests, each naming the hypotheses it separates.\n" +
		"- For every test an explicit potency check: what is learned from a null or negative outcome.\n" +
		"- Rough cost and speed estimates so tests can be sequenced.",
	models.RoleAdversarialCritic: "- Scale checks: do proposed mechanisms produce effects of the observed magnitude?\n" +
		"- Anomaly quarantine: which observations should be set aside as likely artifacts, and why.\n" +
		"- A critique of the third alternative: is it genuinely distinct or a re-dressing of hypothesis one or two?",
}

// RolePrompt returns the discipline prompt for a role.
func RolePrompt(r models.Role) string { return rolePrompts[r] }

// DefaultOutputs returns the default requested-outputs text for a role.
func DefaultOutputs(r models.Role) string { return defaultOutputs[r] }
