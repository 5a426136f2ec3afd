package config

// consts for each config field.
// These are used in tests to verify error messages match json/toml field names
// to ensure error messages are not misleading
const (
	nameField                = "name"
	serverField              = "server"
	enclaveField             = "enclave"
	markerSignerField        = "markerSigner"
	txPoolField              = "txPool"
	storageField             = "storage"
	logField                 = "log"
	accountsField            = "accounts"
	rpcAddressField          = "rpcAddress"
	rpcCorsListField         = "rpcCorsList"
	rpcvHostsField           = "rpcvHosts"
	requestsPerMinuteField   = "requestsPerMinute"
	tlsConfigField           = "tlsConfig"
	authField                = "auth"
	algorithmField           = "algorithm"
	secretField              = "secret"
	keyFileField             = "keyFile"
	certificateFileField     = "certificateFile"
	clientCaCertificateField = "clientCaCertificateFile"
	caCertificateFileField   = "caCertificateFile"
	insecureSkipVerifyField  = "insecureSkipVerify"
	urlField                 = "url"
	publicKeyField           = "publicKey"
	multiTenancyField        = "multiTenancy"
	privacyAddressField      = "privacyAddress"
	chainIdField             = "chainId"
	blockGasLimitField       = "blockGasLimit"
	accountsAllowlistField   = "accountsAllowlist"
	pathField                = "path"
	fileField                = "file"
	addressField             = "address"
	balanceField             = "balance"
)
