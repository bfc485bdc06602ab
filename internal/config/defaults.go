package config

import "poolPulse/internal/model"

// DefaultPools lists the ICPSwap pools monitored when none are configured.
func DefaultPools() []model.Pool {
	return []model.Pool{
		{Title: "BOB / ICP", ID: "ybilh-nqaaa-aaaag-qkhzq-cai"},
		{Title: "CHAT / ICP", ID: "ne2vj-6yaaa-aaaag-qb3ia-cai"},
		{Title: "KINIC / ICP", ID: "335nz-cyaaa-aaaag-qcdka-cai"},
		{Title: "MOTOKO / ICP", ID: "h2bmy-uaaaa-aaaag-qnffq-cai"},
		{Title: "ELNA / ICP", ID: "yonq6-5qaaa-aaaag-qdklq-cai"},
		{Title: "DCD / ICP", ID: "tupjz-uyaaa-aaaag-qcjmq-cai"},
		{Title: "EXE / ICP", ID: "dlfvj-eqaaa-aaaag-qcs3a-cai"},
		{Title: "TAGGR / ICP", ID: "opl73-raaaa-aaaag-qcunq-cai"},
		{Title: "WTN / ICP", ID: "oqn67-kaaaa-aaaag-qj72q-cai"},
		{Title: "ICP / USDC", ID: "mohjv-bqaaa-aaaag-qjyia-cai"},
		{Title: "Querio / ICP", ID: "7flwa-kaaaa-aaaag-qcxhq-cai"},
		{Title: "ckETH / ICP", ID: "angxa-baaaa-aaaag-qcvnq-cai"},
		{Title: "ckBTC / ICP", ID: "xmiu5-jqaaa-aaaag-qbz7q-cai"},
	}
}

// DefaultExchangeAccounts lists the exchange wallets snapshotted when none
// are configured.
func DefaultExchangeAccounts() []model.ExchangeAccount {
	return []model.ExchangeAccount{
		{Name: "Bitget", AccountHex: "bad030b417484232fd2019cb89096feea3fdd3d9eb39e1d07bcb9a13c7673464"},
		{Name: "Binance coldwallet", AccountHex: "609d3e1e45103a82adc97d4f88c51f78dedb25701e8e51e8c4fec53448aadc29", PriceSource: "binance"},
		{Name: "Binance hotwallet", AccountHex: "220c3a33f90601896e26f76fa619fe288742df1fa75426edfaf759d39f2455a5", PriceSource: "binance"},
		{Name: "Bybit", AccountHex: "acd76fff0536f863d9dd4b326a1435466f82305758b4b1b4f62ff9fa81c14073"},
		{Name: "Coinbase 1", AccountHex: "449ce7ad1298e2ed2781ed379aba25efc2748d14c60ede190ad7621724b9e8b2", PriceSource: "coinbase"},
		{Name: "Coinbase 2", AccountHex: "4dfa940def17f1427ae47378c440f10185867677109a02bc8374fc25b9dee8af", PriceSource: "coinbase"},
		{Name: "Coinbase 3", AccountHex: "dd15f3040edab88d2e277f9d2fa5cc11616ebf1442279092e37924ab7cce8a74", PriceSource: "coinbase"},
		{Name: "Gate.io", AccountHex: "8fe706db7b08f957a15199e07761039a7718937aabcc0fe48bc380a4daf9afb0"},
		{Name: "HTX", AccountHex: "935b1a3adc28fd68cacc95afcdec62e985244ce0cfbbb12cdc7d0b8d198b416d"},
		{Name: "Kraken", AccountHex: "040834c30cdf5d7a13aae8b57d94ae2d07eefe2bc3edd8cf88298730857ac2eb"},
		{Name: "KuCoin 1", AccountHex: "efa01544f509c56dd85449edf2381244a48fad1ede5183836229c00ab00d52df"},
		{Name: "KuCoin 2", AccountHex: "00c3df112e62ad353b7cc7bf8ad8ce2fec8f5e633f1733834bf71e40b250c685"},
		{Name: "MEXC", AccountHex: "9e62737aab36f0baffc1faac9edd92a99279723eb3feb2e916fa99bb7fe54b59"},
		{Name: "OKX 1", AccountHex: "e7a879ea563d273c46dd28c1584eaa132fad6f3e316615b3eb657d067f3519b5"},
		{Name: "OKX 2", AccountHex: "d2c6135510eaf107bdc2128ef5962c7db2ae840efdf95b9395cdaf4983942978"},
	}
}
