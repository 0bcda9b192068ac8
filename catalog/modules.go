package catalog

import "debatecraft/models"

// Modules is the static learning module catalog. Prerequisites form a
// linear chain: intro-to-debate -> logical-fallacies -> advanced-techniques.
var Modules = []models.Module{
	{
		ID:            "intro-to-debate",
		Title:         "Introduction to Debate",
		Description:   "Learn the fundamentals of debate structure and basic techniques",
		Difficulty:    models.DifficultyBeginner,
		XPReward:      100,
		EstimatedTime: 15,
		Content: models.ModuleContent{
			Sections: []models.Section{
				{
					ID:      "what-is-debate",
					Title:   "What is Debate?",
					Content: "Debate is a structured discussion where participants present opposing viewpoints on a topic, using evidence and logical reasoning to support their position.",
					Examples: []string{
						"School uniforms should be mandatory",
						"Social media does more harm than good",
						"Homework should be banned",
					},
					KeyPoints: []string{
						"Structured format with rules",
						"Evidence-based arguments",
						"Respectful disagreement",
						"Critical thinking skills",
					},
				},
				{
					ID:      "debate-structure",
					Title:   "Basic Debate Structure",
					Content: "Most debates follow a specific structure: opening statements, arguments, rebuttals, and closing statements.",
					Examples: []string{
						"Opening: State your position clearly",
						"Arguments: Present evidence and reasoning",
						"Rebuttals: Address opposing arguments",
						"Closing: Summarize key points",
					},
					KeyPoints: []string{
						"Clear position statement",
						"Logical flow of ideas",
						"Time management",
						"Strong conclusion",
					},
				},
			},
			Quiz: models.Quiz{
				Questions: []models.QuizQuestion{
					{
						ID:       "q1",
						Question: "What is the primary purpose of debate?",
						Options: []string{
							"To win at all costs",
							"To present and defend viewpoints using evidence and logic",
							"To prove others wrong",
							"To show off knowledge",
						},
						CorrectAnswer: 1,
						Explanation:   "Debate is about presenting well-reasoned arguments supported by evidence, not just winning or proving others wrong.",
					},
					{
						ID:       "q2",
						Question: "Which comes first in a typical debate structure?",
						Options: []string{
							"Rebuttals",
							"Closing statements",
							"Opening statements",
							"Cross-examination",
						},
						CorrectAnswer: 2,
						Explanation:   "Opening statements come first to establish each side's position and preview their main arguments.",
					},
				},
			},
		},
	},
	{
		ID:            "logical-fallacies",
		Title:         "Logical Fallacies",
		Description:   "Identify and avoid common logical fallacies in arguments",
		Difficulty:    models.DifficultyIntermediate,
		XPReward:      150,
		EstimatedTime: 20,
		Prerequisite:  "intro-to-debate",
		Content: models.ModuleContent{
			Sections: []models.Section{
				{
					ID:      "what-are-fallacies",
					Title:   "What are Logical Fallacies?",
					Content: "Logical fallacies are errors in reasoning that undermine the logic of an argument. They can be intentional or unintentional.",
					Examples: []string{
						"Ad hominem: Attacking the person instead of their argument",
						"Straw man: Misrepresenting someone's argument",
						"False dilemma: Presenting only two options when more exist",
					},
					KeyPoints: []string{
						"Weaken argument credibility",
						"Can be subtle or obvious",
						"Important to recognize and avoid",
						"Help evaluate argument quality",
					},
				},
			},
			Quiz: models.Quiz{
				Questions: []models.QuizQuestion{
					{
						ID:       "fallacy1",
						Question: "Which statement contains an ad hominem fallacy?",
						Options: []string{
							"Your argument is flawed because you provided no evidence",
							"You can't trust John's opinion on climate change because he's not a scientist",
							"Your statistics are outdated and therefore unreliable",
							"That conclusion doesn't follow from your premises",
						},
						CorrectAnswer: 1,
						Explanation:   "This attacks John's credentials rather than addressing the actual argument about climate change.",
						FallacyType:   "ad hominem",
					},
					{
						ID:       "fallacy2",
						Question: "\"Either we ban all cars or the planet is doomed\" is an example of which fallacy?",
						Options: []string{
							"Straw man",
							"Slippery slope",
							"False dilemma",
							"Appeal to authority",
						},
						CorrectAnswer: 2,
						Explanation:   "It presents only two options when many intermediate policies exist, which is the false dilemma pattern.",
						FallacyType:   "false dilemma",
					},
				},
			},
		},
	},
	{
		ID:            "advanced-techniques",
		Title:         "Advanced Debate Techniques",
		Description:   "Master sophisticated argumentation and rebuttal strategies",
		Difficulty:    models.DifficultyAdvanced,
		XPReward:      200,
		EstimatedTime: 30,
		Prerequisite:  "logical-fallacies",
		Content: models.ModuleContent{
			Sections: []models.Section{
				{
					ID:      "strategic-thinking",
					Title:   "Strategic Argumentation",
					Content: "Learn how to prioritize arguments, anticipate counterarguments, and build compelling cases.",
					Examples: []string{
						"Hierarchy of arguments: strongest points first",
						"Preemptive rebuttals: address counterarguments early",
						"Evidence layering: multiple sources supporting one claim",
					},
					KeyPoints: []string{
						"Argument prioritization",
						"Strategic timing",
						"Evidence quality over quantity",
						"Anticipatory responses",
					},
				},
			},
			Quiz: models.Quiz{
				Questions: []models.QuizQuestion{
					{
						ID:       "adv1",
						Question: "When should your strongest argument usually be presented?",
						Options: []string{
							"Last, as a surprise",
							"First, to anchor the debate",
							"Only during rebuttals",
							"It makes no difference",
						},
						CorrectAnswer: 1,
						Explanation:   "Leading with your strongest point anchors the discussion around ground you can defend.",
					},
				},
			},
		},
	},
}

// ModuleByID looks up a catalog module.
func ModuleByID(id string) (models.Module, bool) {
	for _, m := range Modules {
		if m.ID == id {
			return m, true
		}
	}
	return models.Module{}, false
}

// PrerequisiteMet reports whether the profile may start the module.
func PrerequisiteMet(p *models.UserProfile, m models.Module) bool {
	return m.Prerequisite == "" || p.HasCompletedModule(m.Prerequisite)
}
