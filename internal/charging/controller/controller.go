// Package controller implements the per-vehicle charge controller: given the
// vehicle's aggregate load flow and an optionally connected charging
// interface, it arbitrates how much power comes from the interface, the
// storage, or is recuperated back out, and keeps running energy totals
// (spec.md §4.4), grounded on original_source/eflips charging.py and
// energy.py's ChargeController.
package controller

import (
	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/energy"
	"github.com/nexabus/evsim/internal/kernel"
	"github.com/nexabus/evsim/internal/port"
	"github.com/nexabus/evsim/internal/storage"
)

// Controller arbitrates flow between a vehicle's load, its energy store,
// and an optionally connected charging interface.
type Controller struct {
	k      *kernel.Kernel
	log    *zap.Logger
	medium energy.Medium

	// LoadPort is the aggregate subsystem consumption port: flow >= 0 is
	// consumption, flow < 0 is recuperation.
	LoadPort *port.Port
	// InterfacePort is what a connected charging facility observes.
	InterfacePort *port.Port
	Storage       *storage.Store

	maxSupplyKW   float64
	bidirectional bool

	lastUpdate                   int64
	lastInterfaceFlowKW          float64
	lastLoadFlowKW               float64
	lastInterfaceToStorageFlowKW float64

	EnergyFromInterfaceNetKWh       float64
	EnergyToLoadsNetKWh             float64
	EnergyFromInterfaceToStorageKWh float64
}

// New builds a Controller observing loadPort and driving store, with no
// interface connected initially.
func New(k *kernel.Kernel, log *zap.Logger, medium energy.Medium, loadPort *port.Port, store *storage.Store) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		k:             k,
		log:           log,
		medium:        medium,
		LoadPort:      loadPort,
		InterfacePort: port.New("interface"),
		Storage:       store,
	}
	loadPort.Subscribe(func(energy.Flow) { c.recompute() })
	store.Subscribe(c.recompute)
	c.recompute()
	return c
}

// Connect attaches an interface supplying maxSupplyKW (signed: positive
// draws from the grid), re-arbitrating immediately.
func (c *Controller) Connect(maxSupplyKW float64, bidirectional bool) {
	c.maxSupplyKW = maxSupplyKW
	c.bidirectional = bidirectional
	c.recompute()
}

// Disconnect removes the interface, re-arbitrating immediately.
func (c *Controller) Disconnect() {
	c.maxSupplyKW = 0
	c.bidirectional = false
	c.recompute()
}

// recompute implements spec.md §4.4's consumption/recuperation split. It
// integrates energy using the flows that were in force before this call
// (spec.md §4.4's last sentence), then computes and publishes new flows.
func (c *Controller) recompute() {
	now := c.k.Now()
	duration := float64(now - c.lastUpdate)
	c.lastUpdate = now

	c.EnergyFromInterfaceNetKWh += c.lastInterfaceFlowKW * duration / 3600
	c.EnergyToLoadsNetKWh += c.lastLoadFlowKW * duration / 3600
	c.EnergyFromInterfaceToStorageKWh += c.lastInterfaceToStorageFlowKW * duration / 3600

	load := c.LoadPort.Flow().KW
	storageUpperKW := c.Storage.AvailableChargeLimitKW()
	storageLowerAbsKW := -c.Storage.FlowLimitLowerKW

	var interfaceToLoad, loadToInterface, interfaceToStorage, storageToLoad, loadToStorage float64

	if load >= 0 {
		sourceKW := c.maxSupplyKW + storageLowerAbsKW
		if load > sourceKW {
			c.log.Warn("consumption exceeds available source power",
				zap.Float64("load_kw", load), zap.Float64("source_kw", sourceKW))
		}
		if c.maxSupplyKW > load {
			interfaceToLoad = load
		} else {
			interfaceToLoad = c.maxSupplyKW
		}
		storageToLoad = load - interfaceToLoad

		interfaceToStorageMax := c.maxSupplyKW - interfaceToLoad
		if interfaceToStorageMax <= storageUpperKW {
			interfaceToStorage = interfaceToStorageMax
		} else {
			interfaceToStorage = storageUpperKW
		}
	} else {
		magnitude := -load
		if magnitude <= storageUpperKW {
			loadToStorage = magnitude
		} else {
			loadToStorage = storageUpperKW
		}
		excess := magnitude - loadToStorage

		if c.bidirectional {
			if excess > c.maxSupplyKW {
				c.log.Warn("recuperation exceeds bidirectional interface capacity",
					zap.Float64("excess_kw", excess), zap.Float64("interface_kw", c.maxSupplyKW))
				loadToInterface = c.maxSupplyKW
			} else {
				loadToInterface = excess
			}
		} else if excess > 0 {
			c.log.Warn("recuperation exceeds storage headroom and interface is not bidirectional, dissipating excess",
				zap.Float64("excess_kw", excess))
		}

		interfaceToStorageMax := storageUpperKW - loadToStorage
		if interfaceToStorageMax <= c.maxSupplyKW {
			interfaceToStorage = interfaceToStorageMax
		} else {
			interfaceToStorage = c.maxSupplyKW
		}
	}

	c.lastLoadFlowKW = load
	interfaceFlowKW := interfaceToLoad + interfaceToStorage - loadToInterface
	c.lastInterfaceFlowKW = interfaceFlowKW
	c.lastInterfaceToStorageFlowKW = interfaceToStorage

	chargeFlowKW := storageToLoad - (loadToStorage + interfaceToStorage)

	c.InterfacePort.Set(energy.NewFlow(c.medium, interfaceFlowKW))
	c.Storage.Port.Set(energy.NewFlow(c.medium, chargeFlowKW))
}
