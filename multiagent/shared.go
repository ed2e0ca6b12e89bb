package multiagent

import (
	"context"
	"fmt"
	"math"

	"github.com/zeu5/vacuum-world/types"
	"github.com/zeu5/vacuum-world/vacuum"
	"golang.org/x/exp/rand"
)

type SharedConfig struct {
	Agents   int
	Rooms    []vacuum.Room
	Episodes int
	Steps    int
	Seed     uint64
	Printer  *vacuum.Printer
}

// EpisodeResult holds the rewards every agent collected in an episode
type EpisodeResult struct {
	Episode  int
	Steps    int
	AllClean bool
	Names    []string
	Rewards  []float64
}

type sharedAgent struct {
	name     string
	location vacuum.Room
	reward   float64
}

// SharedSimulation: every agent cleans when its room is dirty and moves
// otherwise. Cleans are posted to a Channel and moves only target rooms the
// channel still believes dirty. Half of every reward, rounded down, goes to
// each of the other agents.
type SharedSimulation struct {
	config  SharedConfig
	world   *vacuum.World
	channel *Channel
	agents  []*sharedAgent
	rand    *rand.Rand
}

func NewSharedSimulation(config SharedConfig) *SharedSimulation {
	if config.Agents <= 0 {
		config.Agents = 3
	}
	if len(config.Rooms) == 0 {
		config.Rooms = vacuum.ThreeRooms
	}
	if config.Episodes <= 0 {
		config.Episodes = 5
	}
	if config.Steps <= 0 {
		config.Steps = 10
	}
	agents := make([]*sharedAgent, config.Agents)
	for i := range agents {
		agents[i] = &sharedAgent{name: fmt.Sprintf("Agent-%d", i)}
	}
	return &SharedSimulation{
		config:  config,
		channel: NewChannel(),
		agents:  agents,
		rand:    types.NewRand(config.Seed),
	}
}

func (s *SharedSimulation) World() *vacuum.World {
	return s.world
}

func (s *SharedSimulation) Channel() *Channel {
	return s.channel
}

func (s *SharedSimulation) reset() error {
	w, err := vacuum.AllDirty(s.config.Rooms)
	if err != nil {
		return err
	}
	s.world = w
	s.channel.Clear()
	for _, a := range s.agents {
		a.reward = 0
		a.location = s.config.Rooms[s.rand.Intn(len(s.config.Rooms))]
	}
	return nil
}

func (s *SharedSimulation) share(actor *sharedAgent, reward float64) {
	actor.reward += reward
	share := math.Floor(reward / 2)
	for _, a := range s.agents {
		if a != actor {
			a.reward += share
		}
	}
}

func (s *SharedSimulation) act(a *sharedAgent) {
	p := s.config.Printer
	if s.world.IsDirty(a.location) {
		s.world.Clean(a.location)
		s.channel.Post(a.location, vacuum.Clean)
		p.Line("%s cleans %s (+10)", a.name, a.location)
		s.share(a, 10)
		return
	}
	candidates := s.channel.BelievedDirty(s.config.Rooms)
	if len(candidates) == 0 {
		p.Warn("%s wants to move but every room is reported clean (-5)", a.name)
		s.share(a, -5)
		return
	}
	a.location = candidates[s.rand.Intn(len(candidates))]
	p.Line("%s moves to %s (+5)", a.name, a.location)
	s.share(a, 5)
}

// RunEpisode resets the world to all dirty and lets every agent act in turn
// until the step budget runs out or nothing is dirty
func (s *SharedSimulation) RunEpisode(episode int) (EpisodeResult, error) {
	if err := s.reset(); err != nil {
		return EpisodeResult{}, err
	}
	p := s.config.Printer
	p.Episode(episode)
	steps := 0
	for steps < s.config.Steps {
		if s.world.AllClean() {
			p.Success("Every room is clean!")
			break
		}
		for _, a := range s.agents {
			s.act(a)
		}
		steps++
	}
	res := EpisodeResult{
		Episode:  episode,
		Steps:    steps,
		AllClean: s.world.AllClean(),
		Names:    make([]string, len(s.agents)),
		Rewards:  make([]float64, len(s.agents)),
	}
	p.Line("\n[Episode %d Result]", episode)
	for i, a := range s.agents {
		res.Names[i] = a.name
		res.Rewards[i] = a.reward
		p.Line("%s total reward: %g", a.name, a.reward)
	}
	return res, nil
}

func (s *SharedSimulation) Run(ctx context.Context) ([]EpisodeResult, error) {
	results := make([]EpisodeResult, 0, s.config.Episodes)
	for ep := 1; ep <= s.config.Episodes; ep++ {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}
		res, err := s.RunEpisode(ep)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}
