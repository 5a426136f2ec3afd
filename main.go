package main

import (
	"context"
	"crypto/tls"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ConsenSysQuorum/eea-gateway/config"
	"github.com/ConsenSysQuorum/eea-gateway/core"
	"github.com/ConsenSysQuorum/eea-gateway/eea"
	"github.com/ConsenSysQuorum/eea-gateway/enclave"
	"github.com/ConsenSysQuorum/eea-gateway/log"
	"github.com/ConsenSysQuorum/eea-gateway/marker"
	"github.com/ConsenSysQuorum/eea-gateway/metrics"
	"github.com/ConsenSysQuorum/eea-gateway/privacy"
	"github.com/ConsenSysQuorum/eea-gateway/rpc"
	"github.com/ConsenSysQuorum/eea-gateway/state"
	"github.com/ConsenSysQuorum/eea-gateway/storage"
	"github.com/ConsenSysQuorum/eea-gateway/txpool"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
)

type GatewayApp struct {
	storage    *storage.BadgerStorage
	pool       *txpool.TxPool
	controller *privacy.Controller
	rpcService *rpc.RPCService
	logFile    io.Closer
}

var gatewayApp = GatewayApp{}

func main() {
	var verbosity int
	flag.IntVar(&verbosity, "verbosity", log.InfoLevel, "logging verbosity (0 error ... 4 trace)")
	var configFile string
	flag.StringVar(&configFile, "config", "config.toml", "config file (.toml or .json)")
	flag.Parse()
	log.SetVerbosity(verbosity)

	log.Debug("main - config file", "path", configFile)
	nodeConfig, err := readNodeConfigFromFile(configFile)
	if err != nil {
		log.Error("main - loading config file failed", "err", err)
		os.Exit(1)
	}

	rpcBackendErrCh := make(chan error, 1)
	if err := Start(nodeConfig, rpcBackendErrCh); err != nil {
		log.Error("main - start failed", "err", err)
		Shutdown()
		os.Exit(1)
	}
	waitForShutdown(rpcBackendErrCh)
}

func Start(nodeConfig config.Node, rpcBackendErrCh chan error) error {
	if lc := nodeConfig.Log; lc != nil {
		gatewayApp.logFile = log.SetFileOutput(log.FileOutput{
			File:       lc.File,
			MaxSizeMB:  lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAgeDays: lc.MaxAgeDays,
			Compress:   lc.Compress,
			Console:    lc.Console,
		})
	}
	log.Info("Starting EEA gateway", "name", nodeConfig.Name)

	var err error
	if gatewayApp.storage, err = storage.Open(nodeConfig.Storage.Path, nodeConfig.Storage.InMemory); err != nil {
		return errors.Wrap(err, "opening storage")
	}
	accounts := state.NewAccountStore(gatewayApp.storage)
	if err := allocAccounts(accounts, nodeConfig.Accounts); err != nil {
		return errors.Wrap(err, "loading genesis accounts")
	}

	txPoolCfg := nodeConfig.TxPool
	gatewayApp.pool = txpool.New(txpool.Config{
		ChainID:       txPoolCfg.ChainIDBig(),
		BlockGasLimit: txPoolCfg.BlockGasLimit,
		Allowlist:     txPoolCfg.Allowlist(),
	}, accounts)

	nodeKey, err := nodeConfig.MarkerSigner.LoadKey()
	if err != nil {
		return errors.Wrap(err, "loading marker signer key")
	}
	markers := marker.NewFactory(nodeKey, txPoolCfg.ChainIDBig(), nodeConfig.MarkerSigner.Address(), gatewayApp.pool)
	log.Info("marker transactions signed by", "address", markers.Address().Hex(), "privacyAddress", markers.PrivacyAddress().Hex())
	if !txPoolCfg.Allows(markers.Address()) {
		return errors.Errorf("txPool.accountsAllowlist must include the marker signer %s", markers.Address().Hex())
	}

	m := metrics.New()
	enclaveCfg := nodeConfig.Enclave
	enclaveTLS, err := clientTLS(enclaveCfg.TLSConfig)
	if err != nil {
		return errors.Wrap(err, "enclave tls")
	}
	enclaveClient := enclave.NewClient(enclaveCfg.URL, enclaveTLS)
	enclaveClient.ObserveCall = m.ObserveEnclaveCall
	if enclaveCfg.UpcheckOnStart {
		if err := enclaveClient.WaitUntilUp(context.Background(), core.EnclaveUpcheckRetryLimit, core.EnclaveUpcheckRetryWait); err != nil {
			return err
		}
	}

	gatewayApp.controller, err = privacy.NewController(privacy.Config{
		ChainID:        txPoolCfg.ChainIDBig(),
		MultiTenancy:   enclaveCfg.MultiTenancy,
		Allowlist:      txPoolCfg.Allowlist(),
		PrivacyAddress: markers.PrivacyAddress(),
	}, enclaveClient, state.NewPrivateNonceStore(gatewayApp.storage))
	if err != nil {
		return err
	}
	gatewayApp.pool.OnAdmitted(gatewayApp.controller.MarkerAdmitted)

	pipeline := eea.NewPipeline(privacy.NewEnclavePublicKeyProvider(enclaveCfg.PublicKey), gatewayApp.controller, markers, gatewayApp.pool)
	gatewayApp.rpcService = rpc.NewRPCService(eea.NewAPI(pipeline, m), m, nodeConfig.Server, rpcBackendErrCh)
	return gatewayApp.rpcService.Start()
}

// clientTLS returns the loaded TLS config, nil for plain HTTP.
func clientTLS(c *config.ClientTLS) (*tls.Config, error) {
	if c == nil {
		return nil, nil
	}
	if c.TlsCfg == nil {
		if err := c.SetTLSConfig(); err != nil {
			return nil, err
		}
	}
	return c.TlsCfg, nil
}

func allocAccounts(accounts *state.AccountStore, cfg []config.Account) error {
	if len(cfg) == 0 {
		return nil
	}
	alloc := make(map[common.Address]state.Account, len(cfg))
	for _, a := range cfg {
		balance, err := a.BalanceBig()
		if err != nil {
			return err
		}
		alloc[a.AddressHex()] = state.Account{Nonce: a.Nonce, Balance: balance}
	}
	log.Info("loading genesis accounts", "count", len(alloc))
	return accounts.Alloc(alloc)
}

func waitForShutdown(rpcBackendErrCh chan error) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)
	select {
	case sig := <-sigc:
		log.Info("waitForShutdown - Received interrupt signal, shutting down...", "signal", sig)
	case err := <-rpcBackendErrCh:
		log.Error("waitForShutdown - RPC backend failed, shutting down...", "err", err)
	}
	Shutdown()
}

func readNodeConfigFromFile(configFile string) (config.Node, error) {
	reader, err := config.NewNodeReader(configFile)
	if err != nil {
		return config.Node{}, err
	}
	nodeConfig, err := reader.Read()
	if err != nil {
		log.Error("readNodeConfigFromFile - loading node config file failed", "configfile", configFile, "err", err)
		return config.Node{}, err
	}
	if err := nodeConfig.IsValid(); err != nil {
		return config.Node{}, errors.Wrap(err, "invalid config")
	}
	log.Info("readNodeConfigFromFile - node config file read successfully")
	return nodeConfig, nil
}

// Shutdown stops whatever Start got to, in reverse order.
func Shutdown() {
	if gatewayApp.rpcService != nil {
		gatewayApp.rpcService.Stop()
	}
	if gatewayApp.storage != nil {
		if err := gatewayApp.storage.Close(); err != nil {
			log.Error("Shutdown - closing storage failed", "err", err)
		}
	}
	log.Info("EEA gateway stopped")
	if gatewayApp.logFile != nil {
		gatewayApp.logFile.Close()
	}
}
