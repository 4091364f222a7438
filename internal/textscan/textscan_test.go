package textscan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanContent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mentions stripped", "hey <@123456> check this", "hey check this"},
		{"nickname mention stripped", "<@!99> learned regex today", "learned regex today"},
		{"channel and role refs stripped", "see <#555> and <@&777> please", "see and please"},
		{"custom emoji stripped", "done <:party:12345> finally", "done finally"},
		{"animated emoji stripped", "<a:spin:9> whitespace   collapsed", "whitespace collapsed"},
		{"plain text untouched", "gradient descent notes", "gradient descent notes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanContent(tt.in))
		})
	}
}

func TestQualifies(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   bool
		reason string
	}{
		{"short message rejected", "short", false, "Too short"},
		{"length counts characters not bytes", "изучал градиентный спуск", false, "Too short"},
		{"non-ascii log accepted", "сегодня изучал градиентный спуск и оптимизаторы", true, "Qualified"},
		{"punctuation rejected", "!!!???...###$$$%%%^^^&&&***((()))", false, "Insufficient alphabetic content"},
		{"url dump rejected", "https://example.com/a https://example.com/b ok", false, "Mostly URLs"},
		{"real log accepted", "Studied backpropagation and implemented it from scratch in numpy", true, "Qualified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := Qualifies(tt.in, DefaultMinLength)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, reason, tt.reason)
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "anything"))
	assert.Equal(t, 1.0, Similarity("same text", "same text"))
	assert.Equal(t, 1.0, Similarity("Same Text", "  same text "))

	s := Similarity("today I studied gradient descent", "today I studied gradient descent optimizers")
	assert.Greater(t, s, 0.85)

	s = Similarity("completely different subject matter here", "unrelated words about cooking pasta")
	assert.Less(t, s, 0.6)
}

func TestIsDuplicate(t *testing.T) {
	recent := []string{"today I learned about transformers and attention"}
	assert.True(t, IsDuplicate("Today I learned about transformers and attention", recent))
	assert.False(t, IsDuplicate("implemented k-means clustering on the iris dataset", recent))
	assert.False(t, IsDuplicate("anything", nil))
}

func TestTechnicalDepth(t *testing.T) {
	t.Run("no technical content", func(t *testing.T) {
		score, terms := TechnicalDepth("went for a walk and had coffee")
		assert.Equal(t, 0, score)
		assert.Empty(t, terms)
	})

	t.Run("keyword heavy content", func(t *testing.T) {
		score, terms := TechnicalDepth(
			"studied cnn and lstm architectures, compared dropout with batch normalization, tuned the optimizer and learning rate")
		assert.GreaterOrEqual(t, score, 3)
		assert.Contains(t, terms, "cnn")
		assert.LessOrEqual(t, len(terms), 10)
	})

	t.Run("code raises the score", func(t *testing.T) {
		plain, _ := TechnicalDepth("worked on regression")
		withCode, _ := TechnicalDepth("worked on regression\n```\ndef fit(x):\n    return model(x)\n```")
		assert.Greater(t, withCode, plain)
	})

	t.Run("score capped at five", func(t *testing.T) {
		score, _ := TechnicalDepth(strings.Join(technicalKeywords[:30], " ") + " def f(): x = [1]")
		assert.Equal(t, 5, score)
	})
}

func TestClassifyTopic(t *testing.T) {
	t.Run("clear deep learning content", func(t *testing.T) {
		topic, conf := ClassifyTopic(
			"trained a cnn with convolution layers on gpu using pytorch, backpropagation converged nicely with the autoencoder")
		assert.Equal(t, "DL", topic)
		assert.Greater(t, conf["DL"], conf["DS"])
	})

	t.Run("no topical vocabulary is mixed", func(t *testing.T) {
		topic, conf := ClassifyTopic("random words with nothing relevant")
		assert.Equal(t, "Mixed", topic)
		for _, c := range conf {
			assert.Equal(t, 0.25, c)
		}
	})

	t.Run("close scores are mixed", func(t *testing.T) {
		topic, _ := ClassifyTopic("machine learning and deep learning both covered: neural network plus clustering")
		assert.Equal(t, "Mixed", topic)
	})

	t.Run("substring hits can tie an otherwise clear topic", func(t *testing.T) {
		// "ai" matches inside "trained", putting AI level with DL's "cnn"
		// hit, and the one-point gap rule turns the tie into Mixed
		topic, conf := ClassifyTopic("Today I trained a CNN on MNIST and learned about vanishing gradients")
		assert.Equal(t, "Mixed", topic)
		assert.Equal(t, conf["AI"], conf["DL"])
	})
}

func TestExtractConcepts(t *testing.T) {
	concepts := ExtractConcepts("pytorch pytorch pytorch and some dropout", 10)
	assert.Equal(t, 1, countOf(concepts, "pytorch"))
	assert.Contains(t, concepts, "dropout")

	capped := ExtractConcepts(strings.Join(technicalKeywords[:20], " "), 10)
	assert.Len(t, capped, 10)
}

func countOf(list []string, want string) int {
	n := 0
	for _, s := range list {
		if s == want {
			n++
		}
	}
	return n
}

func TestRepetitionPenalty(t *testing.T) {
	freq := map[string]int{"cnn": 5, "dropout": 3, "pytorch": 1}

	t.Run("no concepts is neutral", func(t *testing.T) {
		p, repeated := RepetitionPenalty(nil, freq)
		assert.Equal(t, 1.0, p)
		assert.Empty(t, repeated)
	})

	t.Run("fresh concepts unpenalized", func(t *testing.T) {
		p, repeated := RepetitionPenalty([]string{"pytorch", "gan"}, freq)
		assert.Equal(t, 1.0, p)
		assert.Empty(t, repeated)
	})

	t.Run("half repeated", func(t *testing.T) {
		p, repeated := RepetitionPenalty([]string{"cnn", "gan"}, freq)
		assert.Equal(t, 0.75, p)
		assert.Equal(t, []string{"cnn"}, repeated)
	})

	t.Run("floor at one half", func(t *testing.T) {
		p, repeated := RepetitionPenalty([]string{"cnn", "dropout"}, freq)
		assert.Equal(t, 0.5, p)
		assert.Len(t, repeated, 2)
	})
}

func TestSummarizeLogs(t *testing.T) {
	t.Run("short logs joined verbatim", func(t *testing.T) {
		got := SummarizeLogs([]string{"one", "two"}, 2000)
		assert.Equal(t, "one\n---\ntwo", got)
	})

	t.Run("long logs truncated at boundary", func(t *testing.T) {
		logs := []string{strings.Repeat("a", 600), strings.Repeat("b", 600), strings.Repeat("c", 600)}
		got := SummarizeLogs(logs, 1000)
		assert.True(t, strings.HasSuffix(got, "[... additional logs truncated ...]"))
		assert.NotContains(t, got, "c")
	})
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, ReadingTime("just a few words", 200))
	assert.Equal(t, 2, ReadingTime(strings.Repeat("word ", 450), 200))
}

func TestFormatConcepts(t *testing.T) {
	assert.Equal(t, "None detected", FormatConcepts(nil, 5))
	assert.Equal(t, "`cnn`, `gan`", FormatConcepts([]string{"cnn", "gan"}, 5))
	got := FormatConcepts([]string{"a", "b", "c", "d", "e", "f", "g"}, 5)
	assert.Contains(t, got, "+2 more")
}

func TestAnalyze(t *testing.T) {
	t.Run("qualifying technical log", func(t *testing.T) {
		r := Analyze(
			"Today I learned about CNNs and how convolutional layers work. Implemented a basic CNN in PyTorch with dropout and batch normalization.",
			nil, DefaultMinLength)
		assert.True(t, r.Qualifies)
		assert.Equal(t, "Qualified", r.Reason)
		assert.Equal(t, "DL", r.PrimaryTopic)
		assert.GreaterOrEqual(t, r.DepthScore, 2)
		assert.Contains(t, r.Concepts, "cnn")
		assert.Contains(t, r.Concepts, "pytorch")
		assert.Contains(t, r.Concepts, "batch normalization")
	})

	t.Run("duplicate disqualifies", func(t *testing.T) {
		text := "Implemented logistic regression with sklearn and evaluated the confusion matrix"
		r := Analyze(text, []string{text}, DefaultMinLength)
		assert.False(t, r.Qualifies)
		assert.True(t, r.IsDuplicate)
		assert.Equal(t, "Duplicate", r.Reason)
	})

	t.Run("short message", func(t *testing.T) {
		r := Analyze("hi", nil, DefaultMinLength)
		assert.False(t, r.Qualifies)
		assert.Contains(t, r.Reason, "Too short")
	})
}
