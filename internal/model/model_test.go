package model

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

func TestParseActionKind(t *testing.T) {
	for _, s := range []string{"copy", "download"} {
		a, err := ParseActionKind(s)
		require.NoError(t, err)
		require.Equal(t, ActionKind(s), a)
	}
	for _, s := range []string{"", "Copy", "delete", "downloads"} {
		_, err := ParseActionKind(s)
		require.Error(t, err, "%q", s)
	}
}

func TestParseAssetType(t *testing.T) {
	for _, s := range []string{"component", "template", "design", "gradient"} {
		at, err := ParseAssetType(s)
		require.NoError(t, err)
		require.Equal(t, AssetType(s), at)
	}
	for _, s := range []string{"", "components", "icon"} {
		_, err := ParseAssetType(s)
		require.Error(t, err, "%q", s)
	}
}

func TestParseTier(t *testing.T) {
	for _, s := range []string{"anonymous", "free", "pro", "pro_plus"} {
		tier, err := ParseTier(s)
		require.NoError(t, err)
		require.Equal(t, Tier(s), tier)
	}
	_, err := ParseTier("platinum")
	require.Error(t, err)
}

func TestAllowedOn(t *testing.T) {
	cases := []struct {
		action ActionKind
		asset  AssetType
		want   bool
	}{
		{ActionCopy, AssetComponent, true},
		{ActionCopy, AssetTemplate, false},
		{ActionCopy, AssetDesign, false},
		{ActionCopy, AssetGradient, false},
		{ActionDownload, AssetComponent, true},
		{ActionDownload, AssetTemplate, true},
		{ActionDownload, AssetDesign, true},
		{ActionDownload, AssetGradient, true},
		{ActionKind("delete"), AssetComponent, false},
		{ActionCopy, AssetType("icon"), false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.action.AllowedOn(c.asset), "%s on %s", c.action, c.asset)
	}
}

func TestIdentity(t *testing.T) {
	var id Identity
	require.False(t, id.Authenticated())
	require.False(t, id.Resolvable())

	id.VisitorKey = "fp-abc"
	require.False(t, id.Authenticated())
	require.True(t, id.Resolvable())

	id.UserID = uuid.Must(uuid.NewV4())
	require.True(t, id.Authenticated())
	require.True(t, id.Resolvable())
}
