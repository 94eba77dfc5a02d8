package urlkey_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"unicode"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/surfin-transporter/pkg/batch/component/urlkey"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	testutil "github.com/tigerroll/surfin-transporter/pkg/batch/test"
)

var slugAlphabet = regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Red Shoes", "red-shoes"},
		{"  Red   Shoes!! ", "red-shoes"},
		{"Crème Brûlée", "creme-brulee"},
		{"Straße & Co.", "strasse-and-co"},
		{"Smørrebrød", "smorrebrod"},
		{"Łódź 2024", "lodz-2024"},
		{"--already-a-slug--", "already-a-slug"},
		{"50% OFF / Summer_Sale", "50-off-summer-sale"},
		{"Caf\xe9 Cr\xc3\xa8me", "caf-creme"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, urlkey.Slugify(tt.in))
		})
	}
}

func TestSlugify_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("base slug is deterministic", prop.ForAll(
		func(s string) bool {
			return urlkey.Slugify(s) == urlkey.Slugify(s)
		},
		gen.AnyString(),
	))

	properties.Property("base slug stays within the URL-safe alphabet", prop.ForAll(
		func(s string) bool {
			return slugAlphabet.MatchString(urlkey.Slugify(s))
		},
		gen.OneGenOf(gen.AnyString(), gen.UnicodeString(unicode.Latin), gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestGenerator_IssuesSuffixedCandidatesWithinOneRun(t *testing.T) {
	registry := new(testutil.MockURLRewriteRepository)
	registry.On("FindByRequestPath", mock.Anything, mock.Anything).Return([]model.UrlRewrite{}, nil)

	g := urlkey.NewGenerator(registry)
	ctx := context.Background()

	first, err := g.Generate(ctx, "Red Shoes")
	require.NoError(t, err)
	second, err := g.Generate(ctx, "Red Shoes")
	require.NoError(t, err)

	assert.Equal(t, "red-shoes", first)
	assert.Equal(t, "red-shoes-1", second)
	registry.AssertCalled(t, "FindByRequestPath", mock.Anything, "red-shoes.html")
	registry.AssertCalled(t, "FindByRequestPath", mock.Anything, "red-shoes-1.html")
	registry.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestGenerator_CandidatesArePairwiseDistinct(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("N candidates from one base are distinct", prop.ForAll(
		func(name string, n int) bool {
			registry := new(testutil.MockURLRewriteRepository)
			registry.On("FindByRequestPath", mock.Anything, mock.Anything).Return([]model.UrlRewrite{}, nil)
			g := urlkey.NewGenerator(registry)

			seen := make(map[string]struct{})
			for i := 0; i < n; i++ {
				key, err := g.Generate(context.Background(), name)
				if err != nil {
					return false
				}
				if _, dup := seen[key]; dup {
					return false
				}
				seen[key] = struct{}{}
			}
			return g.Issued() == n
		},
		gen.Identifier(),
		gen.IntRange(1, 25),
	))

	properties.TestingRun(t)
}

func TestGenerator_EvictsRegisteredCandidateOnce(t *testing.T) {
	existing := model.UrlRewrite{ID: 42, RequestPath: "red-shoes.html", EntityType: "product", EntityID: 3}

	registry := new(testutil.MockURLRewriteRepository)
	registry.On("FindByRequestPath", mock.Anything, "red-shoes.html").Return([]model.UrlRewrite{existing}, nil).Once()
	registry.On("Delete", mock.Anything, existing).Return(nil).Once()

	key, err := urlkey.NewGenerator(registry).Generate(context.Background(), "Red Shoes")
	require.NoError(t, err)

	assert.Equal(t, "red-shoes", key, "the base key is reclaimed, not suffixed")
	registry.AssertExpectations(t)
	registry.AssertNumberOfCalls(t, "Delete", 1)
}

func TestGenerator_Errors(t *testing.T) {
	t.Run("empty base", func(t *testing.T) {
		registry := new(testutil.MockURLRewriteRepository)
		_, err := urlkey.NewGenerator(registry).Generate(context.Background(), "¡¿!?")
		assert.ErrorIs(t, err, exception.ErrInvalidValue)
		registry.AssertNotCalled(t, "FindByRequestPath", mock.Anything, mock.Anything)
	})

	t.Run("registry lookup fails", func(t *testing.T) {
		registry := new(testutil.MockURLRewriteRepository)
		registry.On("FindByRequestPath", mock.Anything, "red-shoes.html").Return(nil, errors.New("db down"))
		g := urlkey.NewGenerator(registry)

		_, err := g.Generate(context.Background(), "Red Shoes")
		assert.ErrorIs(t, err, exception.ErrPersistence)
		assert.Equal(t, 0, g.Issued(), "a failed candidate is not recorded")
	})

	t.Run("eviction fails", func(t *testing.T) {
		rw := model.UrlRewrite{ID: 1, RequestPath: "red-shoes.html"}
		registry := new(testutil.MockURLRewriteRepository)
		registry.On("FindByRequestPath", mock.Anything, "red-shoes.html").Return([]model.UrlRewrite{rw}, nil)
		registry.On("Delete", mock.Anything, rw).Return(errors.New("locked"))

		_, err := urlkey.NewGenerator(registry).Generate(context.Background(), "Red Shoes")
		assert.True(t, exception.IsKind(err, exception.KindPersistence))
	})
}
