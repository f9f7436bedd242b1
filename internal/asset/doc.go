// Package asset manages the two ownable entity kinds of asset-desk:
// hardware devices and software licenses.
//
// # Key Types
//
//   - Device: hardware identified by a unique asset number (DEV-001)
//   - License: a software license with a derived license number (LIC-001)
//   - Store: the capability interface front-ends consume
//   - Service: the Store implementation over the SQLite repositories
//
// Assets are created and listed here. Which configuration owns an asset is
// the configuration package's concern.
//
// # Usage
//
//	svc := asset.NewService(
//	    asset.NewSQLiteDeviceRepository(db.DB),
//	    asset.NewSQLiteLicenseRepository(db.DB),
//	)
//	dev, err := svc.AddDevice(ctx, asset.Device{AssetNo: "DEV-900", DeviceType: "PC"})
package asset
