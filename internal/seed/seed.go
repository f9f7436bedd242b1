// Package seed loads a small sample inventory into an empty database.
package seed

import (
	"context"
	"fmt"

	"github.com/nerrad567/asset-desk/internal/asset"
	"github.com/nerrad567/asset-desk/internal/configuration"
)

const sampleNote = "sample"

var sampleDevices = []asset.Device{
	{AssetNo: "DEV-001", DisplayName: asset.StringPtr("ECU解析ワークステーション"), DeviceType: "PC", Model: "Precision 3660", Version: "2024"},
	{AssetNo: "DEV-002", DisplayName: asset.StringPtr("車載ログ収集ノート"), DeviceType: "Laptop", Model: "ThinkPad P1", Version: "Gen 6"},
	{AssetNo: "DEV-003", DisplayName: asset.StringPtr("CANインターフェース"), DeviceType: "Interface", Model: "Vector VN1610", Version: "v2"},
	{AssetNo: "DEV-004", DisplayName: asset.StringPtr("CAN-FDインターフェース"), DeviceType: "Interface", Model: "Vector VN1630A", Version: "v1"},
	{AssetNo: "DEV-005", DisplayName: asset.StringPtr("J2534パススルー"), DeviceType: "Interface", Model: "DrewTech MongoosePro", Version: "v3"},
	{AssetNo: "DEV-006", DisplayName: asset.StringPtr("車載電源供給"), DeviceType: "Power", Model: "BK Precision 1901B", Version: "2022"},
	{AssetNo: "DEV-007", DisplayName: asset.StringPtr("オシロスコープ"), DeviceType: "Instrument", Model: "Keysight DSOX1102G", Version: "2021"},
	{AssetNo: "DEV-008", DisplayName: asset.StringPtr("車載ネットワークアダプタ"), DeviceType: "Interface", Model: "Kvaser Leaf Light", Version: "v2"},
	{AssetNo: "DEV-009", DisplayName: asset.StringPtr("ECUベンチハーネス"), DeviceType: "Harness", Model: "Custom Bench", Version: "2024"},
	{AssetNo: "DEV-010", DisplayName: asset.StringPtr("ECUリプロ/フラッシャ"), DeviceType: "Programmer", Model: "ETAS ES953", Version: "v2"},
}

var sampleLicenses = []asset.License{
	{LicenseNo: "LIC-001", Name: "CANape", LicenseKey: "CANAPE-SAMPLE-001"},
	{LicenseNo: "LIC-002", Name: "CANalyzer", LicenseKey: "CANA-SAMPLE-002"},
	{LicenseNo: "LIC-003", Name: "CANoe", LicenseKey: "CANOE-SAMPLE-003"},
	{LicenseNo: "LIC-004", Name: "INCA Base", LicenseKey: "INCA-SAMPLE-004"},
	{LicenseNo: "LIC-005", Name: "INCA AddOn ASAP2", LicenseKey: "INCA-SAMPLE-005"},
	{LicenseNo: "LIC-006", Name: "Vector vMeasure", LicenseKey: "VMEASURE-SAMPLE-006"},
	{LicenseNo: "LIC-007", Name: "ETAS MDA", LicenseKey: "ETAS-SAMPLE-007"},
	{LicenseNo: "LIC-008", Name: "ETAS ASCMO", LicenseKey: "ETAS-SAMPLE-008"},
	{LicenseNo: "LIC-009", Name: "Diag Studio", LicenseKey: "DIAG-SAMPLE-009"},
	{LicenseNo: "LIC-010", Name: "Flash Tool", LicenseKey: "FLASH-SAMPLE-010"},
}

var sampleConfigs = []struct{ no, name string }{
	{"CNFG-001", "ECU解析-エンジン"},
	{"CNFG-002", "ECU解析-トランスミッション"},
	{"CNFG-003", "ECU解析-ブレーキ"},
	{"CNFG-004", "ECU解析-ADAS"},
	{"CNFG-005", "ECU解析-ボディ"},
	{"CNFG-006", "ECU解析-インフォテインメント"},
	{"CNFG-007", "ECU解析-電源管理"},
	{"CNFG-008", "ECU解析-テレマティクス"},
}

// Result counts what SampleData created.
type Result struct {
	Devices        int
	Licenses       int
	Configurations int
}

// SampleData fills an empty inventory with sample devices, licenses and
// configurations. Configuration i receives device i and license i mod 10.
// Nothing is written, and seeded is false, when any device, license or
// configuration already exists.
func SampleData(ctx context.Context, assets asset.Store, configs configuration.Store) (res Result, seeded bool, err error) {
	empty, err := isEmpty(ctx, assets, configs)
	if err != nil || !empty {
		return res, false, err
	}

	deviceIDs := make([]int64, 0, len(sampleDevices))
	for _, d := range sampleDevices {
		d.State = asset.DeviceActive
		d.Note = sampleNote
		created, err := assets.AddDevice(ctx, d)
		if err != nil {
			return res, false, fmt.Errorf("seeding device %s: %w", d.AssetNo, err)
		}
		deviceIDs = append(deviceIDs, created.ID)
		res.Devices++
	}

	licenseIDs := make([]int64, 0, len(sampleLicenses))
	for _, l := range sampleLicenses {
		l.State = asset.LicenseActive
		l.Note = sampleNote
		created, err := assets.AddLicense(ctx, l)
		if err != nil {
			return res, false, fmt.Errorf("seeding license %s: %w", l.LicenseNo, err)
		}
		licenseIDs = append(licenseIDs, created.ID)
		res.Licenses++
	}

	for i, sc := range sampleConfigs {
		c, err := configs.CreateConfig(ctx, sc.name, sampleNote, sc.no)
		if err != nil {
			return res, false, fmt.Errorf("seeding configuration %s: %w", sc.no, err)
		}
		res.Configurations++

		if i < len(deviceIDs) {
			if err := configs.AssignDevice(ctx, c.ID, deviceIDs[i]); err != nil {
				return res, false, fmt.Errorf("seeding %s devices: %w", sc.no, err)
			}
		}
		if err := configs.AssignLicense(ctx, c.ID, licenseIDs[i%len(licenseIDs)], sampleNote); err != nil {
			return res, false, fmt.Errorf("seeding %s licenses: %w", sc.no, err)
		}
	}

	return res, true, nil
}

func isEmpty(ctx context.Context, assets asset.Store, configs configuration.Store) (bool, error) {
	devices, err := assets.ListDevices(ctx)
	if err != nil {
		return false, fmt.Errorf("counting devices: %w", err)
	}
	licenses, err := assets.ListLicenses(ctx)
	if err != nil {
		return false, fmt.Errorf("counting licenses: %w", err)
	}
	cfgs, err := configs.ListConfigs(ctx)
	if err != nil {
		return false, fmt.Errorf("counting configurations: %w", err)
	}
	return len(devices) == 0 && len(licenses) == 0 && len(cfgs) == 0, nil
}
