// Command autoplay plays a whole match against a running server through the
// REST API. It creates a session, joins both seats, auto-places both
// fleets, waits out the countdown and then fires for both players until
// someone wins.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/gridbattle/game/engine"
	"github.com/wricardo/mcp-training/gridbattle/game/service"
)

// Player is one joined seat and the token that acts for it
type Player struct {
	ID    string
	Name  string
	Slot  engine.PlayerSlot
	Token string
}

type joinResponse struct {
	service.JoinResult
	Token string `json:"token"`
}

// Client talks to the REST API
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, bytes.TrimSpace(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	err := c.do(ctx, http.MethodPost, "/api/sessions", "", map[string]string{"config_id": configID}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) Join(ctx context.Context, sessionID, name string) (*Player, error) {
	var resp joinResponse
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/join", "", map[string]string{"name": name}, &resp); err != nil {
		return nil, err
	}
	return &Player{ID: resp.PlayerID, Name: resp.Name, Slot: resp.Slot, Token: resp.Token}, nil
}

func (c *Client) AutoPlace(ctx context.Context, sessionID string, p *Player) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/auto-place", p.Token, nil, nil)
}

func (c *Client) View(ctx context.Context, sessionID string, p *Player) (*engine.PlayerView, error) {
	var v engine.PlayerView
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/view", p.Token, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Attack fires at a public grid cell
func (c *Client) Attack(ctx context.Context, sessionID string, p *Player, public engine.Coord) (*service.ActionResult, error) {
	var result service.ActionResult
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/attack", p.Token, public, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Match drives both seats of one session
type Match struct {
	client     *Client
	sessionID  string
	players    [2]*Player
	strategies [2]*HuntStrategy
	poll       time.Duration
	delay      time.Duration
	logger     *zap.SugaredLogger
}

// Setup creates a session, joins both seats and places both fleets
func Setup(ctx context.Context, client *Client, configID string, names [2]string, rng *rand.Rand, logger *zap.SugaredLogger) (*Match, error) {
	info, err := client.CreateSession(ctx, configID)
	if err != nil {
		return nil, err
	}
	logger.Infof("✨ Session created: %s (config %s, orientation %s)", info.ID, info.ConfigName, info.Match.Orientation)

	m := &Match{
		client:    client,
		sessionID: info.ID,
		poll:      100 * time.Millisecond,
		logger:    logger,
	}
	for _, name := range names {
		p, err := client.Join(ctx, info.ID, name)
		if err != nil {
			return nil, err
		}
		if err := client.AutoPlace(ctx, info.ID, p); err != nil {
			return nil, err
		}
		m.players[p.Slot] = p
		m.strategies[p.Slot] = NewHuntStrategy(rng)
		logger.Infof("%s joined as the %s player and placed a fleet", p.Name, p.Slot)
	}
	return m, nil
}

// WaitForCombat polls until the countdown has run out
func (m *Match) WaitForCombat(ctx context.Context) error {
	for {
		v, err := m.client.View(ctx, m.sessionID, m.players[engine.First])
		if err != nil {
			return err
		}
		switch v.Phase {
		case engine.PhaseCombat, engine.PhaseResolved:
			return nil
		case engine.PhaseCountdown:
			m.logger.Debugf("countdown: %d", v.Countdown)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for combat in %s: %w", v.Phase, ctx.Err())
		case <-time.After(m.poll):
		}
	}
}

// Play fires for whoever's turn it is until the match resolves or
// maxShots have been fired. It returns the first player's final view and
// the number of shots fired.
func (m *Match) Play(ctx context.Context, maxShots int) (*engine.PlayerView, int, error) {
	shots := 0
	for {
		v, err := m.client.View(ctx, m.sessionID, m.players[engine.First])
		if err != nil {
			return nil, shots, err
		}
		if v.Phase == engine.PhaseResolved {
			return v, shots, nil
		}
		if v.Phase != engine.PhaseCombat {
			return v, shots, fmt.Errorf("match left combat: %s", v.Phase)
		}
		if shots >= maxShots {
			return v, shots, fmt.Errorf("no winner after %d shots", shots)
		}

		shooter := m.players[v.Turn]
		own, err := m.client.View(ctx, m.sessionID, shooter)
		if err != nil {
			return nil, shots, err
		}
		local, ok := m.strategies[shooter.Slot].Next(own.Target)
		if !ok {
			return own, shots, errors.New("no cells left to attack")
		}
		public, err := engine.ToPublic(local, shooter.Slot, own.Orientation)
		if err != nil {
			return nil, shots, err
		}
		if _, err := m.client.Attack(ctx, m.sessionID, shooter, public); err != nil {
			return nil, shots, err
		}
		shots++
		m.logger.Debugf("%s fires at %s", shooter.Name, public)

		if m.delay > 0 {
			time.Sleep(m.delay)
		}
	}
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configName := flag.String("config", "", "Match configuration (default: server default)")
	first := flag.String("first", "alpha", "Name of the first player")
	second := flag.String("second", "bravo", "Name of the second player")
	seed := flag.Uint64("seed", 0, "Strategy seed (0 = random)")
	wait := flag.Duration("wait", time.Minute, "How long to wait for the countdown")
	delay := flag.Duration("delay", 0, "Delay between shots")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	zc := zap.NewDevelopmentConfig()
	if !*verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	base, err := zc.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer base.Sync()
	logger := base.Sugar()

	if *seed == 0 {
		*seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(*seed, *seed))
	logger.Infof("Connecting to game server at %s (seed %d)", *serverURL, *seed)

	ctx := context.Background()
	match, err := Setup(ctx, NewClient(*serverURL), *configName, [2]string{*first, *second}, rng, logger)
	if err != nil {
		logger.Fatalf("Failed to set up match: %v", err)
	}
	match.delay = *delay

	waitCtx, cancel := context.WithTimeout(ctx, *wait)
	err = match.WaitForCombat(waitCtx)
	cancel()
	if err != nil {
		logger.Fatalf("Match never started: %v", err)
	}
	logger.Info("⚔️  Combat started")

	final, shots, err := match.Play(ctx, 2*engine.GridSize*engine.GridSize)
	if err != nil {
		logger.Fatalf("Match failed after %d shots: %v", shots, err)
	}
	if final.Winner == nil {
		logger.Fatalf("Match resolved without a winner")
	}
	winner := match.players[*final.Winner]
	logger.Infof("🎉 %s (%s) wins after %d shots! Hits: first %d, second %d",
		winner.Name, winner.Slot, shots, final.Hits, final.HitsTaken)
	logger.Infof("Session: %s", match.sessionID)
}
