package config

import (
	"log"
	"math"
)

// DuplicatePolicy decides the fate of a response carrying Content-Length more than once.
type DuplicatePolicy uint8

const (
	// RejectDuplicates fails any response with more than one Content-Length header, even
	// if all of them carry the same value.
	RejectDuplicates DuplicatePolicy = iota + 1
	// AllowIdentical tolerates repeated Content-Length headers (and comma-separated lists
	// in a single header) as long as every value is the same, as RFC 9110 8.6 permits.
	// Differing values are rejected anyway.
	AllowIdentical
)

type (
	Headers struct {
		// MaxCount is the upper limit of header fields in a single response. Scratch storage
		// passed by the caller may limit it even further.
		MaxCount int
	}

	Body struct {
		// MaxSize describes the maximal number of decoded body bytes accepted per response.
		// Declared Content-Length values above it are rejected immediately. In order to disable
		// the setting, use the math.MaxUint64 value.
		MaxSize uint64
	}

	Chunked struct {
		// MaxLengthDigits limits the number of hex digits (leading zeroes included) of a single
		// chunk length. 16 digits cover the whole uint64 range, fewer digits effectively limit
		// the size of a single chunk.
		MaxLengthDigits int
	}

	Framing struct {
		// DuplicateContentLength controls how repeated Content-Length headers are treated.
		DuplicateContentLength DuplicatePolicy
	}
)

// Config holds limitations and policies of the response engine.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Headers Headers
	Body    Body
	Chunked Chunked
	Framing Framing
}

// Default returns default config. Body size isn't limited, as a client usually knows
// better what it is downloading.
func Default() *Config {
	return &Config{
		Headers: Headers{
			MaxCount: 50,
		},
		Body: Body{
			MaxSize: math.MaxUint64,
		},
		Chunked: Chunked{
			MaxLengthDigits: maxLengthDigits,
		},
		Framing: Framing{
			DuplicateContentLength: RejectDuplicates,
		},
	}
}

const maxLengthDigits = 16

// Fill brings out-of-range values back to sane ones. Every correction is reported via
// the standard logger, as it most probably signals a misconfiguration. Nil config results
// in defaults.
func Fill(cfg *Config) *Config {
	if cfg == nil {
		return Default()
	}

	if cfg.Headers.MaxCount <= 0 {
		log.Printf("misconfiguration: headers count limit (Config.Headers.MaxCount) is set to %d, "+
			"resetting it to the default %d\n", cfg.Headers.MaxCount, Default().Headers.MaxCount,
		)
		cfg.Headers.MaxCount = Default().Headers.MaxCount
	}

	if digits := cfg.Chunked.MaxLengthDigits; digits < 1 || digits > maxLengthDigits {
		log.Printf("misconfiguration: chunk length digits (Config.Chunked.MaxLengthDigits) is set to %d, "+
			"however the value must lie in range [1, %d]. Setting it hard to %d\n",
			digits, maxLengthDigits, maxLengthDigits,
		)
		cfg.Chunked.MaxLengthDigits = maxLengthDigits
	}

	switch cfg.Framing.DuplicateContentLength {
	case RejectDuplicates, AllowIdentical:
	default:
		log.Printf("misconfiguration: unknown duplicate Content-Length policy (%d), "+
			"falling back to rejecting duplicates\n", cfg.Framing.DuplicateContentLength,
		)
		cfg.Framing.DuplicateContentLength = RejectDuplicates
	}

	return cfg
}
