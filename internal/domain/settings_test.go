package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsAreValidOnceGuildIsSet(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	require.ErrorIs(t, settings.Validate(), ErrInvalidSettings)

	settings.Discord.GuildID = "1234"
	require.NoError(t, settings.Validate())
}

func TestVotingRulesRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rules   VotingRules
		wantErr string
	}{
		{name: "lower bound", rules: VotingRules{MaxVotesPerVoter: 1, NumberOfWinners: 1}},
		{name: "upper bound", rules: VotingRules{MaxVotesPerVoter: 32, NumberOfWinners: 32}},
		{name: "cap zero", rules: VotingRules{MaxVotesPerVoter: 0, NumberOfWinners: 3}, wantErr: "max votes per voter"},
		{name: "winners too high", rules: VotingRules{MaxVotesPerVoter: 3, NumberOfWinners: 33}, wantErr: "number of winners"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			settings := DefaultSettings()
			settings.Discord.GuildID = "1234"
			settings.Voting = tt.rules

			err := settings.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidSettings)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVariantTogglesEnabled(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AllVariants(), VariantToggles{}.Enabled())
	assert.Equal(t, AllVariants(), VariantToggles(nil).Enabled())

	toggles := VariantToggles{VariantSnow: false, VariantSand: false, VariantDay: true}
	enabled := toggles.Enabled()
	assert.Len(t, enabled, len(AllVariants())-2)
	assert.NotContains(t, enabled, VariantSnow)
	assert.Contains(t, enabled, VariantDay)

	allOff := VariantToggles{}
	for _, variant := range AllVariants() {
		allOff[variant] = false
	}
	settings := DefaultSettings()
	settings.Discord.GuildID = "1"
	settings.Variants = allOff
	require.ErrorIs(t, settings.Validate(), ErrInvalidSettings)
}
