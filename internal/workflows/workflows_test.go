package workflows

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PolarWolf314/cred/internal/configs"
	"github.com/PolarWolf314/cred/internal/credstore"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/targets"
	"github.com/PolarWolf314/cred/internal/vault"
)

const testRepo = "acme/app"

type fixture struct {
	dir  string
	id   string
	fake *targets.Fake
}

// newFixture initializes a project bound to testRepo with an authenticated
// fake target.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv(credstore.EnvKeystore, credstore.BackendMemory)
	t.Setenv(configs.ConfigDirEnv, t.TempDir())
	t.Setenv(credstore.EnvMasterKey, "")
	require.NoError(t, configs.InitUserSettings())

	originalTargets := Targets
	originalSettings := configs.ProjectCredSettings
	t.Cleanup(func() {
		Targets = originalTargets
		configs.ProjectCredSettings = originalSettings
	})

	fake := targets.NewFake("fake")
	Targets = targets.NewRegistry()
	Targets.Register("fake", func(token string) (targets.Client, error) {
		return fake, nil
	})

	dir := t.TempDir()
	result, err := Init(context.Background(), InitOptions{Dir: dir, Repo: testRepo})
	require.NoError(t, err)

	_, err = TargetSet(context.Background(), TargetSetOptions{Name: "fake", Token: "token"})
	require.NoError(t, err)

	return &fixture{dir: dir, id: result.ProjectID, fake: fake}
}

func (f *fixture) set(t *testing.T, key, value string) {
	t.Helper()
	_, err := SetSecret(context.Background(), SetSecretOptions{Dir: f.dir, Key: key, Value: value})
	require.NoError(t, err)
}

func TestInitCreatesProject(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"project.toml", "vault.enc"} {
		_, err := os.Stat(filepath.Join(f.dir, ".cred", name))
		assert.NoError(t, err, name)
	}
	gitignore, err := os.ReadFile(filepath.Join(f.dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(gitignore), ".cred/")

	_, err = Init(context.Background(), InitOptions{Dir: f.dir})
	assert.ErrorIs(t, err, kerrors.ErrProjectAlreadyInitialized)
}

func TestInitRejectsBadRepo(t *testing.T) {
	t.Setenv(credstore.EnvKeystore, credstore.BackendMemory)
	dir := t.TempDir()

	_, err := Init(context.Background(), InitOptions{Dir: dir, Repo: "not a repo"})
	assert.ErrorIs(t, err, kerrors.ErrValidation)
	_, statErr := os.Stat(filepath.Join(dir, ".cred"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInitUsesKeyFromEnvironment(t *testing.T) {
	t.Setenv(credstore.EnvKeystore, credstore.BackendMemory)
	t.Setenv(configs.ConfigDirEnv, t.TempDir())
	key, err := vault.GenerateKey()
	require.NoError(t, err)
	t.Setenv(credstore.EnvMasterKey, base64.StdEncoding.EncodeToString(key))

	originalSettings := configs.ProjectCredSettings
	t.Cleanup(func() { configs.ProjectCredSettings = originalSettings })

	dir := t.TempDir()
	result, err := Init(context.Background(), InitOptions{Dir: dir})
	require.NoError(t, err)
	assert.True(t, result.KeyFromEnv)

	_, err = vault.Load(filepath.Join(dir, ".cred", "vault.enc"), key)
	assert.NoError(t, err)
}

func TestSecretLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	set, err := SetSecret(ctx, SetSecretOptions{Dir: f.dir, Key: "API_KEY", Value: "one"})
	require.NoError(t, err)
	assert.True(t, set.Created)
	assert.Equal(t, vault.FormatRaw, set.Format)

	set, err = SetSecret(ctx, SetSecretOptions{Dir: f.dir, Key: "API_KEY", Value: "two"})
	require.NoError(t, err)
	assert.False(t, set.Created)

	entry, err := GetSecret(ctx, GetSecretOptions{Dir: f.dir, Key: "API_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "two", entry.Value)

	require.NoError(t, DescribeSecret(ctx, DescribeSecretOptions{Dir: f.dir, Key: "API_KEY", Text: "billing"}))
	list, err := ListSecrets(ctx, ListSecretsOptions{Dir: f.dir})
	require.NoError(t, err)
	require.Len(t, list.Secrets, 1)
	assert.Equal(t, "billing", list.Secrets[0].Description)
	assert.Empty(t, list.Secrets[0].Value)

	removed, err := RemoveSecrets(ctx, RemoveSecretsOptions{Dir: f.dir, Keys: []string{"API_KEY"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"API_KEY"}, removed.Removed)

	_, err = GetSecret(ctx, GetSecretOptions{Dir: f.dir, Key: "API_KEY"})
	assert.ErrorIs(t, err, kerrors.ErrUnknownKey)
}

func TestSetSecretValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := SetSecret(ctx, SetSecretOptions{Dir: f.dir, Key: "1BAD", Value: "x"})
	assert.ErrorIs(t, err, kerrors.ErrValidation)

	_, err = SetSecret(ctx, SetSecretOptions{Dir: f.dir, Key: "OK", Value: "x", Format: "toml"})
	assert.ErrorIs(t, err, kerrors.ErrValidation)

	err = DescribeSecret(ctx, DescribeSecretOptions{Dir: f.dir, Key: "MISSING", Text: "x"})
	assert.ErrorIs(t, err, kerrors.ErrUnknownKey)
}

func TestRemoveIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.set(t, "A", "1")

	_, err := RemoveSecrets(context.Background(), RemoveSecretsOptions{Dir: f.dir, Keys: []string{"A", "B"}})
	assert.ErrorIs(t, err, kerrors.ErrUnknownKey)

	_, err = GetSecret(context.Background(), GetSecretOptions{Dir: f.dir, Key: "A"})
	assert.NoError(t, err)
}

func TestRemoveDryRunKeepsSecrets(t *testing.T) {
	f := newFixture(t)
	f.set(t, "DB_USER", "u")
	f.set(t, "DB_PASS", "p")
	f.set(t, "OTHER", "o")

	result, err := RemoveSecrets(context.Background(), RemoveSecretsOptions{Dir: f.dir, Keys: []string{"DB_*"}, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"DB_PASS", "DB_USER"}, result.Removed)

	list, err := ListSecrets(context.Background(), ListSecretsOptions{Dir: f.dir})
	require.NoError(t, err)
	assert.Len(t, list.Secrets, 3)
}

func TestPushThenListShowsClean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.set(t, "A", "1")
	f.set(t, "B", "2")

	list, err := ListSecrets(ctx, ListSecretsOptions{Dir: f.dir, Target: "fake"})
	require.NoError(t, err)
	for _, s := range list.Secrets {
		assert.True(t, s.Dirty, s.Key)
	}

	report, err := Push(ctx, PushOptions{Dir: f.dir})
	require.NoError(t, err)
	assert.Equal(t, testRepo, report.Identity)
	assert.Equal(t, []string{"A", "B"}, report.Succeeded)

	got, ok := f.fake.Value(testRepo, "B")
	require.True(t, ok)
	assert.Equal(t, "2", got)

	list, err = ListSecrets(ctx, ListSecretsOptions{Dir: f.dir, Target: "fake"})
	require.NoError(t, err)
	for _, s := range list.Secrets {
		assert.False(t, s.Dirty, s.Key)
	}

	report, err = Push(ctx, PushOptions{Dir: f.dir})
	require.NoError(t, err)
	assert.Empty(t, report.Planned)
	assert.Equal(t, []string{"A", "B"}, report.Skipped)
}

func TestPushPartialFailurePersistsSuccesses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.set(t, "A", "1")
	f.set(t, "B", "2")
	f.set(t, "C", "3")
	f.fake.FailUpsert["B"] = errors.New("rejected")

	report, err := Push(ctx, PushOptions{Dir: f.dir})
	var partial *kerrors.PartialFailure
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, []string{"A", "C"}, report.Succeeded)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "B", report.Failed[0].Key)

	records, err := configs.LoadPushState(filepath.Join(f.dir, ".cred", "state.toml"))
	require.NoError(t, err)
	assert.Contains(t, records["fake"], "A")
	assert.Contains(t, records["fake"], "C")
	assert.NotContains(t, records["fake"], "B")

	delete(f.fake.FailUpsert, "B")
	report, err = Push(ctx, PushOptions{Dir: f.dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, report.Succeeded)
}

func TestPushIdentityOverrideMismatch(t *testing.T) {
	f := newFixture(t)
	f.set(t, "A", "1")

	_, err := Push(context.Background(), PushOptions{Dir: f.dir, Repo: "other/repo"})
	assert.ErrorIs(t, err, kerrors.ErrIdentityMismatch)
	assert.Empty(t, f.fake.Upserts())
}

func TestPushRequiresAuthenticatedTarget(t *testing.T) {
	f := newFixture(t)
	f.set(t, "A", "1")
	require.NoError(t, TargetRevoke(context.Background(), TargetRevokeOptions{Name: "fake"}))

	_, err := Push(context.Background(), PushOptions{Dir: f.dir, Target: "fake"})
	assert.ErrorIs(t, err, kerrors.ErrNotAuthenticated)

	_, err = Push(context.Background(), PushOptions{Dir: f.dir, Target: "nope"})
	assert.ErrorIs(t, err, kerrors.ErrUnknownTarget)
}

func TestRemoveThenPruneDeletesRemote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.set(t, "A", "1")
	f.set(t, "B", "2")
	_, err := Push(ctx, PushOptions{Dir: f.dir})
	require.NoError(t, err)

	_, err = RemoveSecrets(ctx, RemoveSecretsOptions{Dir: f.dir, Keys: []string{"A"}})
	require.NoError(t, err)

	// Push never deletes.
	_, err = Push(ctx, PushOptions{Dir: f.dir})
	require.NoError(t, err)
	_, ok := f.fake.Value(testRepo, "A")
	assert.True(t, ok)

	report, err := Prune(ctx, PruneOptions{Dir: f.dir, Keys: []string{"A"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, report.Succeeded)
	_, ok = f.fake.Value(testRepo, "A")
	assert.False(t, ok)
	_, ok = f.fake.Value(testRepo, "B")
	assert.True(t, ok)
}

func TestPruneWorksWithoutMasterKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.set(t, "A", "1")
	_, err := Push(ctx, PushOptions{Dir: f.dir})
	require.NoError(t, err)

	store, err := OpenCredentialStore()
	require.NoError(t, err)
	require.NoError(t, store.Delete(credstore.MasterKeyRef(f.id)))

	report, err := Prune(ctx, PruneOptions{Dir: f.dir, All: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, report.Succeeded)
}

func TestImportExportRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.set(t, "EXISTING", "keep")

	input := filepath.Join(t.TempDir(), "in.env")
	require.NoError(t, os.WriteFile(input, []byte("# comment\nEXISTING=replace\nNEW=value=with=equals\n"), 0600))

	imported, err := Import(ctx, ImportOptions{Dir: f.dir, Path: input})
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW"}, imported.Added)
	assert.Equal(t, []string{"EXISTING"}, imported.Skipped)

	entry, err := GetSecret(ctx, GetSecretOptions{Dir: f.dir, Key: "NEW"})
	require.NoError(t, err)
	assert.Equal(t, "value=with=equals", entry.Value)

	output := filepath.Join(t.TempDir(), "out.json")
	exported, err := Export(ctx, ExportOptions{Dir: f.dir, Path: output})
	require.NoError(t, err)
	assert.Equal(t, 2, exported.Count)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.JSONEq(t, `{"EXISTING":"keep","NEW":"value=with=equals"}`, string(data))

	_, err = Export(ctx, ExportOptions{Dir: f.dir, Path: output})
	assert.ErrorIs(t, err, kerrors.ErrFileExists)
}

func TestImportDryRunChangesNothing(t *testing.T) {
	f := newFixture(t)

	result, err := Import(context.Background(), ImportOptions{
		Dir:    f.dir,
		Data:   []byte(`{"A":"1"}`),
		Format: "json",
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, result.Added)

	_, err = GetSecret(context.Background(), GetSecretOptions{Dir: f.dir, Key: "A"})
	assert.ErrorIs(t, err, kerrors.ErrUnknownKey)
}

func TestTargetSetAndList(t *testing.T) {
	newFixture(t)

	infos, err := TargetList(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "fake", infos[0].Name)
	assert.True(t, infos[0].Default)
	assert.True(t, infos[0].Authenticated)
	assert.True(t, infos[0].Supported)

	_, err = TargetSet(context.Background(), TargetSetOptions{Name: "fake", Token: "  "})
	assert.ErrorIs(t, err, kerrors.ErrValidation)

	_, err = TargetSet(context.Background(), TargetSetOptions{Name: "gitlab", Token: "t"})
	assert.ErrorIs(t, err, kerrors.ErrUnknownTarget)

	err = TargetRevoke(context.Background(), TargetRevokeOptions{Name: "gitlab"})
	assert.ErrorIs(t, err, kerrors.ErrUnknownTarget)
}

func TestStatusReportsDirtyKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.set(t, "A", "1")
	_, err := Push(ctx, PushOptions{Dir: f.dir})
	require.NoError(t, err)
	f.set(t, "B", "2")

	status, err := Status(ctx, StatusOptions{Dir: f.dir})
	require.NoError(t, err)
	assert.True(t, status.KeyAvailable)
	assert.Equal(t, 2, status.SecretCount)
	assert.Equal(t, testRepo, status.Identity)
	require.Len(t, status.Targets, 1)
	assert.Equal(t, 1, status.Targets[0].Pushed)
	assert.Equal(t, []string{"B"}, status.Targets[0].Dirty)
}

func TestDoctorHealthyProject(t *testing.T) {
	f := newFixture(t)

	result, err := Doctor(context.Background(), DoctorOptions{Dir: f.dir})
	require.NoError(t, err)
	for _, check := range result.Checks {
		assert.NotEqual(t, CheckError, check.Status, "%s: %s", check.Name, check.Message)
	}
	assert.False(t, result.HasErrors())
}

func TestDoctorOutsideProject(t *testing.T) {
	t.Setenv(credstore.EnvKeystore, credstore.BackendMemory)
	t.Setenv(configs.ConfigDirEnv, t.TempDir())
	require.NoError(t, configs.InitUserSettings())

	result, err := Doctor(context.Background(), DoctorOptions{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.True(t, result.HasErrors())
	assert.Contains(t, result.Suggestions, "Run 'cred init' to initialize a project")
}

func TestLogFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.set(t, "DB_URL", "x")
	f.set(t, "API_KEY", "y")
	_, err := Push(ctx, PushOptions{Dir: f.dir})
	require.NoError(t, err)

	all, err := Log(ctx, LogOptions{Dir: f.dir})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, all.TotalEntriesBeforeFilter, 4)

	sets, err := Log(ctx, LogOptions{Dir: f.dir, Operations: "set"})
	require.NoError(t, err)
	assert.Len(t, sets.Entries, 2)

	db, err := Log(ctx, LogOptions{Dir: f.dir, Key: "DB_*"})
	require.NoError(t, err)
	require.Len(t, db.Entries, 2)
	assert.Equal(t, "set", db.Entries[0].Operation)
	assert.Equal(t, "push", db.Entries[1].Operation)

	pushes, err := Log(ctx, LogOptions{Dir: f.dir, Target: "fake", Operations: "push"})
	require.NoError(t, err)
	require.Len(t, pushes.Entries, 1)
	assert.Equal(t, 2, pushes.Entries[0].Succeeded)

	latest, err := Log(ctx, LogOptions{Dir: f.dir, Limit: 1, Reverse: true})
	require.NoError(t, err)
	require.Len(t, latest.Entries, 1)
	assert.Equal(t, "push", latest.Entries[0].Operation)

	_, err = Log(ctx, LogOptions{Dir: f.dir, Since: "yesterday"})
	assert.ErrorIs(t, err, kerrors.ErrValidation)
}

func TestRotateReplacesMasterKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.set(t, "API_KEY", "secret")

	before, err := CIInit(ctx, CIInitOptions{Dir: f.dir})
	require.NoError(t, err)
	assert.Equal(t, credstore.EnvMasterKey, before.EnvVar)
	assert.Equal(t, testRepo, before.Repo)

	dry, err := Rotate(ctx, RotateOptions{Dir: f.dir, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, dry.SecretCount)
	unchanged, err := CIInit(ctx, CIInitOptions{Dir: f.dir})
	require.NoError(t, err)
	assert.Equal(t, before.MasterKey, unchanged.MasterKey)

	result, err := Rotate(ctx, RotateOptions{Dir: f.dir})
	require.NoError(t, err)
	assert.Equal(t, credstore.MasterKeyRef(f.id), result.KeyRef)

	entry, err := GetSecret(ctx, GetSecretOptions{Dir: f.dir, Key: "API_KEY"})
	require.NoError(t, err)
	assert.Equal(t, "secret", entry.Value)

	oldKey, err := base64.StdEncoding.DecodeString(before.MasterKey)
	require.NoError(t, err)
	_, err = vault.Load(filepath.Join(f.dir, ".cred", "vault.enc"), oldKey)
	assert.ErrorIs(t, err, kerrors.ErrCrypto)
}

func TestRotateRefusesEnvironmentKey(t *testing.T) {
	f := newFixture(t)
	key, err := CIInit(context.Background(), CIInitOptions{Dir: f.dir})
	require.NoError(t, err)
	t.Setenv(credstore.EnvMasterKey, key.MasterKey)

	_, err = Rotate(context.Background(), RotateOptions{Dir: f.dir})
	assert.ErrorIs(t, err, kerrors.ErrValidation)
}
