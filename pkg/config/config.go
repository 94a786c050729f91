// pkg/config/config.go

package config

import (
	"time"

	"github.com/spf13/viper"
)

// Settings holds everything tunable about a verification run. Defaults suit
// a ZFS-root Ubuntu host booting via GRUB or ZFSBootMenu; a config file at
// /etc/zupdate/config.yaml or ZUPDATE_* environment variables override them.
type Settings struct {
	ArtifactPath   string        `mapstructure:"artifact_path"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`

	// Disk space thresholds for the boot filesystem, in MiB. Below the hard
	// minimum the disk-space check FAILs (fatal); between hard and soft it
	// WARNs.
	DiskHardMinMB int64 `mapstructure:"disk_hard_min_mb"`
	DiskSoftMinMB int64 `mapstructure:"disk_soft_min_mb"`

	// ESPPath is where the EFI system partition is expected to be mounted.
	ESPPath string `mapstructure:"esp_path"`

	// BootMenuImageGlob locates the boot-menu EFI image relative to the ESP;
	// BootMenuBackupGlob its backup copy.
	BootMenuImageGlob  string `mapstructure:"bootmenu_image_glob"`
	BootMenuBackupGlob string `mapstructure:"bootmenu_backup_glob"`

	// KeyFileGlob matches ZFS encryption key material whose permissions the
	// key-permissions check audits.
	KeyFileGlob string `mapstructure:"key_file_glob"`

	// HostIDFile is compared against the hostid command's output.
	HostIDFile string `mapstructure:"hostid_file"`

	// SelftestPool names the pool used for the dataset round-trip self-test;
	// empty means the first pool the probe sees.
	SelftestPool string `mapstructure:"selftest_pool"`
}

const (
	DefaultArtifactPath = "/etc/zupdate-update.conf"
	DefaultConfigDir    = "/etc/zupdate"
)

// Load reads settings from defaults, optional config file and environment.
func Load() (*Settings, error) {
	v := viper.New()

	v.SetDefault("artifact_path", DefaultArtifactPath)
	v.SetDefault("command_timeout", 30*time.Second)
	v.SetDefault("disk_hard_min_mb", 256)
	v.SetDefault("disk_soft_min_mb", 1024)
	v.SetDefault("esp_path", "/boot/efi")
	v.SetDefault("bootmenu_image_glob", "EFI/ZBM/*.EFI")
	v.SetDefault("bootmenu_backup_glob", "EFI/ZBM/*-backup.EFI")
	v.SetDefault("key_file_glob", "/etc/zfs/keys/*")
	v.SetDefault("hostid_file", "/etc/hostid")
	v.SetDefault("selftest_pool", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(DefaultConfigDir)
	v.SetEnvPrefix("ZUPDATE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is the common case; anything else is real.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
