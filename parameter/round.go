package parameter

import "time"

// Round Protocol
const (
	// SentinelTick marks the terminal broadcast; workers exit on receipt
	SentinelTick = -1

	// NoFrontier marks a column without alive entities in the round message
	NoFrontier = -1

	// RoundHeaderLen is the fixed prefix of the round message before per-column frontier ids
	RoundHeaderLen = 3

	// CollectTimeout is the default bound on a single collection phase (0 = wait forever)
	CollectTimeout time.Duration = 0

	// RoundDelay is the default pause between rounds (0 = run flat out)
	RoundDelay time.Duration = 0

	// SentinelTimeout bounds the terminal broadcast, which is sent even after the run context ends
	SentinelTimeout = 2 * time.Second
)

// Entity Behaviour
const (
	// FireProbability is the chance an eligible frontier entity fires on a cadence tick
	FireProbability = 0.10

	// FireCadence is the tick period of entity fire eligibility (0 disables entity fire)
	FireCadence = 4
)

// Projectile Travel & Ledger
const (
	// BaseDelay is the fixed travel component added to row distance
	BaseDelay = 2

	// LedgerCapacity bounds the number of projectile slots held by the coordinator
	LedgerCapacity = 256

	// CompactThreshold is the inactive slot fraction above which the ledger is compacted
	CompactThreshold = 0.25
)

// Respawn
const (
	// RespawnEnabled toggles the periodic respawn pass
	RespawnEnabled = false

	// RespawnEvery is the round period of the respawn pass
	RespawnEvery = 5

	// RespawnProbability is the independent revival chance of a flanked dead entity
	RespawnProbability = 0.20
)

// Stochastic Resolution
// Cumulative bands over a single draw: [0,Hit) hit, [Hit,Hit+Left) left, then right, remainder blocked
const (
	// ResolveHitChance is the probability a defender projectile strikes its target cell
	ResolveHitChance = 0.70

	// ResolveDeflectLeftChance is the probability of deflection to the left neighbour
	ResolveDeflectLeftChance = 0.10

	// ResolveDeflectRightChance is the probability of deflection to the right neighbour
	ResolveDeflectRightChance = 0.10
)

// Network
const (
	// NetworkAddress is the default coordinator listen/dial address
	NetworkAddress = "127.0.0.1:7777"

	// NetworkHandshakeTimeout bounds the hello exchange of a worker connection
	NetworkHandshakeTimeout = 5 * time.Second

	// NetworkQueueSize is the per-peer outbound frame queue
	NetworkQueueSize = 16
)

// Spectator Feed
const (
	// SpectateSendQueue is the per-subscriber frame backlog; a full queue drops the subscriber
	SpectateSendQueue = 8

	// SpectateWriteTimeout bounds one websocket write
	SpectateWriteTimeout = 10 * time.Second

	// SpectatePingInterval keeps idle connections alive
	SpectatePingInterval = 25 * time.Second

	// SpectateReadTimeout drops subscribers that stop answering pings
	SpectateReadTimeout = 60 * time.Second
)
