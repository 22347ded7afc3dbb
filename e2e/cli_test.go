package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/matchboard/internal/api"
	"github.com/mcoot/matchboard/internal/factory"
	"github.com/mcoot/matchboard/internal/services/users"
	redisstorage "github.com/mcoot/matchboard/internal/storage/redis"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "matchboard-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/matchboard")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "MATCHBOARD_TOKEN=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the real server stack against an in-process Redis
type testServer struct {
	addr     string
	mini     *miniredis.Miniredis
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	mini := miniredis.RunT(t)

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mini.Addr()
	app, err := factory.New(factory.Config{
		Logger:      logger,
		StorageType: factory.StorageTypeRedis,
		RedisConfig: &redisCfg,
		UsersConfig: users.Config{BcryptCost: bcrypt.MinCost},
	})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		UserService:       app.UserService,
		RankingService:    app.RankingService,
		MatchService:      app.MatchService,
		SimulationService: app.SimulationService,
		Store:             app.Storage,
		Gatherer:          app.Registry,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/health")

	return &testServer{
		addr: serverURL,
		mini: mini,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Surname  string `json:"surname"`
}

type registrationResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type loginResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type matchResponse struct {
	Rank1   int64 `json:"rank1"`
	Rank2   int64 `json:"rank2"`
	Points1 int64 `json:"points1"`
	Points2 int64 `json:"points2"`
}

type leaderboardEntry struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Rank     int64  `json:"rank"`
	Score    int64  `json:"score"`
}

type simulationResponse struct {
	Message string `json:"message"`
	Users   int    `json:"users"`
	Matches int    `json:"matches"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_PlayerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Register
	output, err := cli.run("player", "register", "--user", "alice", "--pass", "secret", "--name", "Alice", "--surname", "Smith")
	require.NoError(t, err, "output: %s", output)

	var reg registrationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &reg))
	assert.Equal(t, int64(1), reg.UserID)

	// Login saves the token
	output, err = cli.run("player", "login", "--user", "alice", "--pass", "secret")
	require.NoError(t, err, "output: %s", output)

	var login loginResponse
	require.NoError(t, json.Unmarshal([]byte(output), &login))
	assert.Len(t, login.Token, 32)
	assert.Empty(t, login.User.Password)

	saved, err := os.ReadFile(cli.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, login.Token, string(saved))

	// The token names the player
	output, err = cli.run("player", "whoami")
	require.NoError(t, err, "output: %s", output)

	var me userResponse
	require.NoError(t, json.Unmarshal([]byte(output), &me))
	assert.Equal(t, "alice", me.Username)

	// Update without --id targets the logged-in player
	output, err = cli.run("player", "update", "--name", "Alicia")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("player", "show", "--id", "1")
	require.NoError(t, err, "output: %s", output)

	var shown userResponse
	require.NoError(t, json.Unmarshal([]byte(output), &shown))
	assert.Equal(t, "Alicia", shown.Name)
	assert.Equal(t, "Smith", shown.Surname)

	// Duplicate registration reports the server's message
	output, err = cli.run("player", "register", "--user", "alice", "--pass", "x")
	require.Error(t, err)
	assert.Contains(t, output, "Username already exists")
}

func TestCLI_MatchAndLeaderboard(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	for _, user := range []string{"a", "b", "c"} {
		output, err := cli.run("player", "register", "--user", user, "--pass", "pw")
		require.NoError(t, err, "output: %s", output)
	}

	output, err := cli.run("match", "report", "--player1", "1", "--player2", "2", "--score1", "7", "--score2", "3")
	require.NoError(t, err, "output: %s", output)

	var match matchResponse
	require.NoError(t, json.Unmarshal([]byte(output), &match))
	assert.Equal(t, matchResponse{Rank1: 1, Rank2: 2, Points1: 3, Points2: 0}, match)

	output, err = cli.run("match", "report", "--player1", "2", "--player2", "3", "--score1", "5", "--score2", "5")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("leaderboard", "--page", "1", "--count", "10")
	require.NoError(t, err, "output: %s", output)

	var entries []leaderboardEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, leaderboardEntry{ID: 1, Username: "a", Rank: 1, Score: 3}, entries[0])
	assert.Equal(t, int64(1), entries[1].Score)
	assert.Equal(t, int64(1), entries[2].Score)

	// The sorted set lives under the shared key
	members, err := ts.mini.ZMembers("leaderboard")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2", "3"}, members)
}

func TestCLI_Simulate(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("simulate", "--users", "4")
	require.NoError(t, err, "output: %s", output)

	var sim simulationResponse
	require.NoError(t, json.Unmarshal([]byte(output), &sim))
	assert.Equal(t, "Simulation completed successfully", sim.Message)
	assert.Equal(t, 4, sim.Users)
	assert.Equal(t, 6, sim.Matches)

	output, err = cli.run("leaderboard", "--page", "1", "--count", "10")
	require.NoError(t, err, "output: %s", output)

	var entries []leaderboardEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.Len(t, entries, 4)
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Rank)
	}

	output, err = cli.run("simulate", "--users", "1")
	require.Error(t, err)
	assert.Contains(t, output, "At least 2 users are required for simulation.")
}
