package buildconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBuild_NoMetadataStillSucceeds(t *testing.T) {
	cfg := Build(context.Background(), Options{Env: Env{}})

	require.Equal(t, "", cfg.CommitHash())
	require.Equal(t, "", cfg.CommitURL())
	require.Contains(t, cfg.Env, "COMMIT_HASH")
	require.Contains(t, cfg.Env, "COMMIT_URL")
	require.False(t, cfg.Production)
	require.Equal(t, "standalone", cfg.Output)
	require.False(t, cfg.ProductionBrowserSourceMaps)
	require.Nil(t, cfg.Compiler.RemoveConsole)
	require.Empty(t, cfg.Compiler.RemoveProperties)
}

func TestBuild_RewriteTableIsExact(t *testing.T) {
	cfg := Build(context.Background(), Options{Env: Env{}})

	want := []RewriteRule{
		{Source: "/atom.xml", Destination: "/feed"},
		{Source: "/feed.xml", Destination: "/feed"},
		{Source: "/sitemap.xml", Destination: "/sitemap"},
	}
	if diff := cmp.Diff(want, cfg.Rewrites); diff != "" {
		t.Fatalf("rewrites mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_SecurityHeaders(t *testing.T) {
	cfg := Build(context.Background(), Options{Env: Env{}})

	want := []HeaderRule{{
		Source: "/(.*)",
		Headers: []Header{
			{Key: "X-Content-Type-Options", Value: "nosniff"},
			{Key: "X-Frame-Options", Value: "DENY"},
			{Key: "X-XSS-Protection", Value: "1; mode=block"},
		},
	}}
	if diff := cmp.Diff(want, cfg.Headers); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_ProductionAugmentation(t *testing.T) {
	cfg := Build(context.Background(), Options{
		Env:    Env{"APP_ENV": "production", "ASSETPREFIX": "https://ignored.example"},
		DotEnv: Env{"ASSETPREFIX": "https://cdn.example.com"},
	})

	require.True(t, cfg.Production)
	require.Equal(t, "https://cdn.example.com", cfg.AssetPrefix)
	require.NotNil(t, cfg.Compiler.RemoveConsole)
	require.Equal(t, []string{"error", "warn"}, cfg.Compiler.RemoveConsole.Exclude)
	require.Equal(t, []string{`^data-id$`, `^data-(\w+)-id$`}, cfg.Compiler.RemoveProperties)
}

func TestBuild_AssetPrefixIgnoredOutsideProduction(t *testing.T) {
	cfg := Build(context.Background(), Options{
		Env:    Env{},
		DotEnv: Env{"ASSETPREFIX": "https://cdn.example.com"},
	})
	require.Empty(t, cfg.AssetPrefix)
}

func TestBuild_AnalyzerFlag(t *testing.T) {
	off := Build(context.Background(), Options{Env: Env{"ANALYZE": "1"}})
	require.False(t, off.Analyzer.Enabled)

	on := Build(context.Background(), Options{Env: Env{"ANALYZE": "true"}})
	require.True(t, on.Analyzer.Enabled)
}

func TestBuild_CommitFromGit(t *testing.T) {
	cfg := Build(context.Background(), Options{
		Env: Env{},
		Git: gitWithRemote("git@github.com:Innei/Shiro.git"),
	})
	require.Equal(t, "abc123", cfg.CommitHash())
	require.Equal(t, "https://github.com/Innei/Shiro/commit/abc123", cfg.CommitURL())
}

func TestBuild_ReturnsIndependentSlices(t *testing.T) {
	a := Build(context.Background(), Options{Env: Env{}})
	a.Rewrites[0].Destination = "/changed"
	a.ServerExternalPackages[0] = "changed"

	b := Build(context.Background(), Options{Env: Env{}})
	require.Equal(t, "/feed", b.Rewrites[0].Destination)
	require.Equal(t, "@aws-sdk/client-s3", b.ServerExternalPackages[0])
	require.Len(t, b.ServerExternalPackages, 16)
}

func TestWithBundleAnalyzer_DoesNotMutateInput(t *testing.T) {
	base := Build(context.Background(), Options{Env: Env{}})
	wrapped := WithBundleAnalyzer(base)
	require.False(t, base.Analyzer.Enabled)
	require.True(t, wrapped.Analyzer.Enabled)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	env, err := LoadDotEnv(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	require.Empty(t, env)

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ASSETPREFIX=https://cdn.example.com\n# comment\nFOO=bar\n"), 0o600))

	env, err = LoadDotEnv(path)
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com", env.Get("ASSETPREFIX"))
	require.True(t, env.IsSet("FOO"))
	require.False(t, env.IsSet("BAR"))
}
