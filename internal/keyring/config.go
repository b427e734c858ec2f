package keyring

type Config struct {
	File string `yaml:"file"`
}
