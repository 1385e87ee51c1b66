package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags from args.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-grpc-address grpc server address in format [host]:[port]
//	-d database DSN
//	-remote document store address used by the agent
//	-remote-grpc health service address used by the agent
//	-l local store file
//	-engine local store engine (sqlite, bolt)
//	-business-id business the agent synchronizes
//	-token bearer token presented by the agent
//	-c/-config JSON or YAML file path with configs
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-sync-interval scheduled sync period
//	-max-retries failures before an operation is dead-lettered
//	-hash-key security hash key
//	-status print the sync status and exit
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-biz-sync", flag.ContinueOnError)

	var serverAddress, grpcServerAddress NetAddress
	var databaseDSN string
	var remoteAddress, remoteGRPCAddress string
	var localPath, engine string
	var businessID, token string
	var configPath string
	var tokenSignKey, tokenIssuer string
	var requestTimeout, syncInterval time.Duration
	var maxRetries int
	var hashKey string
	var statusOnly bool

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&grpcServerAddress, "grpc-address", "Net grpc server address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&remoteAddress, "remote", "", "Document store address")
	fs.StringVar(&remoteGRPCAddress, "remote-grpc", "", "Document store health service address")
	fs.StringVar(&localPath, "l", "", "Local store file")
	fs.StringVar(&engine, "engine", "", "Local store engine (sqlite, bolt)")
	fs.StringVar(&businessID, "business-id", "", "Business identifier")
	fs.StringVar(&token, "token", "", "Bearer token")
	fs.StringVar(&configPath, "c", "", "JSON or YAML config file path")
	fs.StringVar(&configPath, "config", "", "JSON or YAML config file path (alias)")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Scheduled sync period (e.g., 5m)")
	fs.IntVar(&maxRetries, "max-retries", 0, "Failures before an operation is dead-lettered")
	fs.StringVar(&hashKey, "hash-key", "", "Security hash key")
	fs.BoolVar(&statusOnly, "status", false, "Print sync status and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &StructuredConfig{
		App: App{
			BusinessID:   businessID,
			Token:        token,
			TokenSignKey: tokenSignKey,
			TokenIssuer:  tokenIssuer,
			HashKey:      hashKey,
		},
		Storage: Storage{
			DB:    DB{DSN: databaseDSN},
			Local: Local{Engine: engine, Path: localPath},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcServerAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    remoteAddress,
			GRPCAddress:    remoteGRPCAddress,
			RequestTimeout: requestTimeout,
		},
		Workers:    Workers{SyncInterval: syncInterval},
		Queue:      Queue{MaxRetries: maxRetries},
		FilePath:   configPath,
		StatusOnly: statusOnly,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" && host != "" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
