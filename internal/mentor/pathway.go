package mentor

import (
	"fmt"
	"math"
	"sort"

	"github.com/keshon/learning-mentor/internal/state"
)

// Milestone is one stage of the mastery pathway.
type Milestone struct {
	ID                  string
	Level               int
	Name                string
	MinPoints           int
	MaxPoints           int // math.MaxInt for the final stage
	FocusAreas          []string
	MLEngineerGoals     []string
	ResearcherGoals     []string
	RecommendedProjects []string
}

// milestones is ordered by points range.
var milestones = []Milestone{
	{
		ID:        "foundations",
		Level:     0,
		Name:      "🌱 Foundations",
		MinPoints: 0,
		MaxPoints: 500,
		FocusAreas: []string{
			"Python basics and data structures",
			"NumPy and Pandas fundamentals",
			"Basic statistics and linear algebra",
			"Introduction to ML concepts",
			"Data visualization with Matplotlib/Seaborn",
		},
		MLEngineerGoals: []string{
			"Master Python fundamentals",
			"Learn data manipulation with Pandas",
			"Understand basic ML algorithms (Linear Regression, Decision Trees)",
		},
		ResearcherGoals: []string{
			"Build strong mathematical foundation",
			"Read introductory ML papers",
			"Understand basic neural network theory",
		},
		RecommendedProjects: []string{
			"Iris flower classification",
			"House price prediction",
			"Titanic survival prediction",
		},
	},
	{
		ID:        "intermediate",
		Level:     1,
		Name:      "📚 Intermediate Practitioner",
		MinPoints: 500,
		MaxPoints: 2000,
		FocusAreas: []string{
			"Supervised learning algorithms",
			"Model evaluation and validation",
			"Feature engineering techniques",
			"Introduction to deep learning",
			"CNNs and computer vision basics",
		},
		MLEngineerGoals: []string{
			"Build end-to-end ML pipelines",
			"Learn model deployment with Flask/FastAPI",
			"Understand Docker basics",
			"Practice feature engineering",
		},
		ResearcherGoals: []string{
			"Read foundational papers (AlexNet, ResNet, Attention)",
			"Implement papers from scratch",
			"Experiment with different architectures",
			"Learn PyTorch/TensorFlow deeply",
		},
		RecommendedProjects: []string{
			"Image classifier with CNNs",
			"Sentiment analysis with NLP",
			"Deploy ML model as REST API",
		},
	},
	{
		ID:        "advanced",
		Level:     2,
		Name:      "🚀 Advanced Specialist",
		MinPoints: 2000,
		MaxPoints: 5000,
		FocusAreas: []string{
			"Advanced deep learning (Transformers, GANs)",
			"NLP with large language models",
			"Reinforcement learning",
			"MLOps and production systems",
			"Advanced optimization techniques",
		},
		MLEngineerGoals: []string{
			"Build scalable ML systems",
			"Implement CI/CD for ML models",
			"Master Kubernetes and cloud deployment",
			"Design robust data pipelines",
			"A/B testing and model monitoring",
		},
		ResearcherGoals: []string{
			"Read and implement recent papers (< 1 year old)",
			"Design novel architectures",
			"Conduct ablation studies",
			"Write technical blog posts/papers",
			"Reproduce SOTA results",
		},
		RecommendedProjects: []string{
			"Build a chatbot with transformers",
			"Image generation with GANs or Diffusion Models",
			"Deploy production ML system with monitoring",
		},
	},
	{
		ID:        "researcher",
		Level:     3,
		Name:      "🎓 Research Expert",
		MinPoints: 5000,
		MaxPoints: math.MaxInt,
		FocusAreas: []string{
			"Cutting-edge research areas",
			"Novel model architectures",
			"Theoretical foundations",
			"Research paper writing",
			"Open source contributions",
		},
		MLEngineerGoals: []string{
			"Architect ML platforms",
			"Lead ML teams",
			"Contribute to open-source ML tools",
			"Design custom training frameworks",
			"Optimize large-scale systems",
		},
		ResearcherGoals: []string{
			"Publish papers at top conferences",
			"Propose novel research directions",
			"Mentor other researchers",
			"Review papers for conferences",
			"Push state-of-the-art forward",
		},
		RecommendedProjects: []string{
			"Implement novel research idea",
			"Reproduce and improve SOTA results",
			"Contribute to major ML framework (PyTorch, JAX)",
		},
	},
}

// topicRoadmaps maps topic -> difficulty tier -> study items.
var topicRoadmaps = map[string]map[string][]string{
	"AI": {
		"beginner":     {"Search algorithms", "Planning", "Knowledge representation"},
		"intermediate": {"Expert systems", "Logic and reasoning", "Intelligent agents"},
		"advanced":     {"Multi-agent systems", "Game AI", "Automated planning"},
	},
	"ML": {
		"beginner":     {"Linear regression", "Logistic regression", "Decision trees"},
		"intermediate": {"Random forests", "SVM", "Ensemble methods", "Feature selection"},
		"advanced":     {"AutoML", "Transfer learning", "Meta-learning"},
	},
	"DL": {
		"beginner":     {"Neural networks", "Backpropagation", "CNNs"},
		"intermediate": {"RNNs", "LSTMs", "Attention mechanisms", "Transformers"},
		"advanced":     {"GANs", "Diffusion models", "Vision transformers", "Few-shot learning"},
	},
	"DS": {
		"beginner":     {"Data cleaning", "EDA", "Statistics", "Visualization"},
		"intermediate": {"A/B testing", "Time series", "Dimensionality reduction"},
		"advanced":     {"Causal inference", "Bayesian methods", "Large-scale data processing"},
	},
}

// Career path identifiers.
const (
	PathMLEngineer   = "ml_engineer"
	PathAIResearcher = "ai_researcher"
)

// MilestoneForPoints returns the milestone a points total falls into.
func MilestoneForPoints(points int) Milestone {
	for _, m := range milestones {
		if points >= m.MinPoints && points < m.MaxPoints {
			return m
		}
	}
	return milestones[len(milestones)-1]
}

// NextMilestone returns the next milestone above the current points, or
// false at the top of the ladder.
func NextMilestone(points int) (Milestone, bool) {
	for _, m := range milestones {
		if points < m.MinPoints {
			return m, true
		}
	}
	return Milestone{}, false
}

// Progress summarizes pathway standing for a user.
type Progress struct {
	Current             Milestone
	Next                *Milestone
	Percentage          float64
	MLEngineerRecs      []string
	ResearcherRecs      []string
	FocusAreas          []string
	RecommendedProjects []string
}

// ProgressSummary computes the user's pathway standing and per-path
// recommendations.
func ProgressSummary(user *state.User) Progress {
	current := MilestoneForPoints(user.Points)

	p := Progress{
		Current:             current,
		Percentage:          100,
		MLEngineerRecs:      Recommendations(user.SkillLevel, user.TopicCoverage, PathMLEngineer),
		ResearcherRecs:      Recommendations(user.SkillLevel, user.TopicCoverage, PathAIResearcher),
		FocusAreas:          current.FocusAreas,
		RecommendedProjects: current.RecommendedProjects,
	}

	if next, ok := NextMilestone(user.Points); ok {
		p.Next = &next
		span := next.MinPoints - current.MinPoints
		if span > 0 {
			p.Percentage = float64(user.Points-current.MinPoints) / float64(span) * 100
		}
	}
	return p
}

// Recommendations blends career-path goals for the user's level with study
// items from topics they have barely touched. Capped at five.
func Recommendations(skillLevel int, coverage map[string]float64, careerPath string) []string {
	var recs []string

	if skillLevel >= 0 && skillLevel < len(milestones) {
		m := milestones[skillLevel]
		if careerPath == PathMLEngineer {
			recs = append(recs, m.MLEngineerGoals...)
		} else {
			recs = append(recs, m.ResearcherGoals...)
		}
	}

	var weak []string
	for topic, count := range coverage {
		if count < 5 {
			weak = append(weak, topic)
		}
	}
	sort.Strings(weak)

	tier := []string{"beginner", "intermediate", "advanced"}[min(max(skillLevel, 0), 2)]
	for _, topic := range weak {
		roadmap, ok := topicRoadmaps[topic]
		if !ok {
			continue
		}
		items := roadmap[tier]
		for i, item := range items {
			if i >= 2 {
				break
			}
			recs = append(recs, fmt.Sprintf("Study %s: %s", topic, item))
		}
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}
