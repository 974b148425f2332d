package constants

const (
	AppName        = "algo-quickstart"
	ConfigFileName = "quickstart"

	FilePerm      = 0o444
	DirectoryPerm = 0o700

	// Algorand account addresses are base32 of key + checksum.
	AddressLength = 58

	MaxDecimals  = 19
	MinGroupSize = 2
	MaxGroupSize = 16

	MaxUnitNameBytes  = 8
	MaxAssetNameBytes = 32
	MaxURLBytes       = 96
	MetadataHashBytes = 32

	MaxProgramBytes = 2048
	MaxAppArgs      = 16
	MaxAppArgBytes  = 2048

	AlgoDecimals      = 6
	MicroAlgosPerAlgo = 1_000_000

	TestNetUSDCAssetID = 10458941
	USDCDecimals       = 6

	IPFSPrefix = "ipfs://"

	ExplorerBaseURL = "https://lora.algokit.io"
	DefaultNetwork  = "testnet"
)

// Pin backend
const (
	DefaultPinServerPort   = "3001"
	DefaultImagePinName    = "MasterPass Ticket Image"
	DefaultMetadataPinName = "MasterPass Ticket Metadata"
	DefaultMetadataName    = "NFT Example"
	DefaultMetadataDesc    = "This is an unchangeable NFT"
	UploadFieldName        = "file"
	PreviewDomainSuffix    = ".vercel.app"
)

// Form defaults
const (
	DefaultTokenName     = "MasterPass Token"
	DefaultTokenUnit     = "MPT"
	DefaultTokenTotal    = "1000"
	DefaultTokenDecimals = "0"

	DefaultNFTName = "MasterPass Ticket"
	DefaultNFTUnit = "MTK"
)
