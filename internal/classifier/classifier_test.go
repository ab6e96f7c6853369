package classifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository/memstore"
	"github.com/spec-kit/complaint-service/internal/taxonomy"
)

type fixture struct {
	classifier *Classifier
	ids        map[string]int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWith(t, Config{})
}

func newFixtureWith(t *testing.T, cfg Config) fixture {
	t.Helper()
	ctx := context.Background()
	repo := memstore.New().Repos().Taxonomy
	ids := map[string]int64{}

	add := func(level domain.IssueLevel, parent, name string) {
		var parentID *int64
		if parent != "" {
			id := ids[parent]
			parentID = &id
		}
		node, err := repo.GetOrInsertNode(ctx, level, parentID, name)
		require.NoError(t, err)
		ids[name] = node.ID
	}
	ids[domain.OthersIssueName] = domain.OthersIssueID

	add(domain.IssueLevelMain, "", "Hardware")
	add(domain.IssueLevelMain, "", "Office Equipment")
	add(domain.IssueLevelMain, "", "Network")
	add(domain.IssueLevelRelated, "Hardware", "Hardware Issue")
	add(domain.IssueLevelRelated, "Office Equipment", "Printer Problem")
	add(domain.IssueLevelRelated, "Network", "Internet Connectivity")
	add(domain.IssueLevelSubRelated, "Hardware Issue", "Key Not Working")
	add(domain.IssueLevelSubRelated, "Hardware Issue", "Mouse Broken")
	add(domain.IssueLevelSubRelated, "Printer Problem", "Paper Jam")
	add(domain.IssueLevelSubRelated, "Printer Problem", "Toner Low")
	add(domain.IssueLevelSubRelated, "Internet Connectivity", "Wifi Down")
	add(domain.IssueLevelSubRelated, domain.OthersIssueName, "General Inquiry")

	desc := &domain.IssueDescription{SubRelatedIssueID: ids["Paper Jam"], Text: "Paper stuck in the tray"}
	require.NoError(t, repo.CreateDescription(ctx, desc))
	ids["Paper Jam description"] = desc.ID
	for i, text := range []string{"Remove the jammed sheet", "Open the front cover"} {
		require.NoError(t, repo.UpsertStep(ctx, &domain.SolutionStep{IssueDescriptionID: desc.ID, StepNumber: 2 - i, Instruction: text}))
	}

	store := taxonomy.NewStore(repo, taxonomy.Config{})
	return fixture{classifier: New(store, repo, zap.NewNop(), cfg), ids: ids}
}

func TestClassifyMatchesRelatedAndSubRelated(t *testing.T) {
	f := newFixture(t)

	got, err := f.classifier.Classify(context.Background(), "My printer has a <b>paper jam</b>")
	require.NoError(t, err)

	assert.Equal(t, f.ids["Office Equipment"], got.MainIssueID)
	assert.Equal(t, "Office Equipment", got.MainIssueName)
	assert.Equal(t, f.ids["Printer Problem"], got.RelatedIssueID)
	require.NotNil(t, got.SubRelatedIssueID)
	assert.Equal(t, f.ids["Paper Jam"], *got.SubRelatedIssueID)
	assert.Len(t, got.SubRelatedIssueCandidates, 2)

	require.NotNil(t, got.IssueDescription)
	assert.Equal(t, f.ids["Paper Jam description"], got.IssueDescription.ID)
	require.Len(t, got.SolutionSteps, 2)
	assert.Equal(t, 1, got.SolutionSteps[0].StepNumber)
	assert.Equal(t, "Open the front cover", got.SolutionSteps[0].Instruction)
}

func TestClassifyKeyboardOverride(t *testing.T) {
	// At 0.5 "keyboard" no longer clears the bar against "Key Not Working".
	f := newFixtureWith(t, Config{Threshold: 0.5})

	got, err := f.classifier.Classify(context.Background(), "hardware keyboard stopped responding")
	require.NoError(t, err)

	assert.Equal(t, f.ids["Hardware"], got.MainIssueID)
	assert.Equal(t, f.ids["Hardware Issue"], got.RelatedIssueID)
	require.NotNil(t, got.SubRelatedIssueID)
	assert.Equal(t, f.ids["Key Not Working"], *got.SubRelatedIssueID)
	assert.Nil(t, got.IssueDescription)
	assert.Empty(t, got.SolutionSteps)
}

func TestClassifyOverrideRulesStayInsideMatchedRelated(t *testing.T) {
	f := newFixture(t)

	got, err := f.classifier.Classify(context.Background(), "keyboard xqzv")
	require.NoError(t, err)

	assert.True(t, got.IsUncategorized())
	assert.Equal(t, domain.OthersIssueID, got.RelatedIssueID)
	assert.Nil(t, got.SubRelatedIssueID)
	require.Len(t, got.SubRelatedIssueCandidates, 1)
	assert.Equal(t, "General Inquiry", got.SubRelatedIssueCandidates[0].Name)
}

func TestClassifyGibberishFallsBackToOthers(t *testing.T) {
	f := newFixture(t)

	got, err := f.classifier.Classify(context.Background(), "xqzv wplk")
	require.NoError(t, err)

	assert.True(t, got.IsUncategorized())
	assert.Equal(t, domain.OthersIssueName, got.MainIssueName)
	assert.Nil(t, got.SubRelatedIssueID)
	require.Len(t, got.SubRelatedIssueCandidates, 1)
	assert.Equal(t, "General Inquiry", got.SubRelatedIssueCandidates[0].Name)
}

func TestClassifySoleChildIsSelected(t *testing.T) {
	f := newFixture(t)

	got, err := f.classifier.Classify(context.Background(), "internet is unstable today")
	require.NoError(t, err)

	assert.Equal(t, f.ids["Internet Connectivity"], got.RelatedIssueID)
	require.NotNil(t, got.SubRelatedIssueID)
	assert.Equal(t, f.ids["Wifi Down"], *got.SubRelatedIssueID)
}

func TestClassifyAmbiguousSubLeavesCandidates(t *testing.T) {
	f := newFixture(t)

	got, err := f.classifier.Classify(context.Background(), "hardware casing cracked")
	require.NoError(t, err)

	assert.Equal(t, f.ids["Hardware Issue"], got.RelatedIssueID)
	assert.Nil(t, got.SubRelatedIssueID)
	assert.Len(t, got.SubRelatedIssueCandidates, 2)
}

type failingTaxonomy struct {
	Taxonomy
}

func (failingTaxonomy) MainIssues(context.Context) ([]domain.IssueNode, error) {
	return nil, assert.AnError
}

func TestClassifySurfacesStorageFailure(t *testing.T) {
	c := New(failingTaxonomy{}, nil, nil, Config{})

	_, err := c.Classify(context.Background(), "printer")

	assert.ErrorIs(t, err, assert.AnError)
}

func TestSolutionsWithoutDescription(t *testing.T) {
	f := newFixture(t)

	desc, steps, err := f.classifier.Solutions(context.Background(), f.ids["Toner Low"])

	require.NoError(t, err)
	assert.Nil(t, desc)
	assert.Empty(t, steps)
}

func TestKeywordRuleNeedsNamedCandidate(t *testing.T) {
	rule := KeywordRule{Keyword: "keyboard", SubRelatedName: "key not working"}
	candidates := []domain.IssueNode{{ID: 7, Name: "Key Not Working"}}

	node, ok := rule.Apply("my Keyboard died", candidates)
	assert.True(t, ok)
	assert.Equal(t, int64(7), node.ID)

	_, ok = rule.Apply("my mouse died", candidates)
	assert.False(t, ok)

	_, ok = rule.Apply("my keyboard died", nil)
	assert.False(t, ok)
}
