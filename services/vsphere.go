// ABOUTME: vSphere client for inventory discovery via govmomi
// ABOUTME: Converts clusters and VMs into resource pools and workloads

package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/property"
	"github.com/vmware/govmomi/vim25/mo"

	"github.com/markalston/placement-planner/models"
)

// VSphereCredentials holds vCenter connection info
type VSphereCredentials struct {
	Host       string
	Username   string
	Password   string
	Datacenter string
	Insecure   bool
}

// VSphereClient wraps govmomi for inventory discovery. Discovered
// clusters become resource pools; VMs become workloads with their
// configured demand.
type VSphereClient struct {
	creds      VSphereCredentials
	overcommit models.OvercommitRatios
	client     *govmomi.Client
	finder     *find.Finder
	datacenter *object.Datacenter
}

// NewVSphereClient creates a client. Discovered pools get the supplied
// overcommit ratios; vCenter has no native notion of them.
func NewVSphereClient(creds VSphereCredentials, overcommit models.OvercommitRatios) *VSphereClient {
	return &VSphereClient{creds: creds, overcommit: overcommit}
}

// Connect establishes the vCenter session and resolves the datacenter.
func (v *VSphereClient) Connect(ctx context.Context) error {
	host := v.creds.Host
	if !strings.HasPrefix(host, "https://") && !strings.HasPrefix(host, "http://") {
		host = "https://" + host
	}

	u, err := url.Parse(host + "/sdk")
	if err != nil {
		return fmt.Errorf("invalid vCenter URL %q: %w", v.creds.Host, err)
	}
	u.User = url.UserPassword(v.creds.Username, v.creds.Password)

	client, err := govmomi.NewClient(ctx, u, v.creds.Insecure)
	if err != nil {
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "401"), strings.Contains(errStr, "Cannot complete login"):
			return fmt.Errorf("authentication failed - verify username and password")
		case strings.Contains(errStr, "certificate"), strings.Contains(errStr, "x509"):
			return fmt.Errorf("SSL certificate error connecting to %s - try setting VSPHERE_INSECURE=true", v.creds.Host)
		default:
			return fmt.Errorf("failed to connect to vCenter at %s: %w", v.creds.Host, err)
		}
	}

	v.client = client
	v.finder = find.NewFinder(client.Client, true)

	dc, err := v.finder.Datacenter(ctx, v.creds.Datacenter)
	if err != nil {
		return fmt.Errorf("datacenter %q: %w", v.creds.Datacenter, err)
	}
	v.datacenter = dc
	v.finder.SetDatacenter(dc)

	slog.Info("vSphere connected", "host", v.creds.Host, "datacenter", v.creds.Datacenter)
	return nil
}

// Disconnect closes the vCenter connection
func (v *VSphereClient) Disconnect(ctx context.Context) error {
	if v.client != nil {
		return v.client.Logout(ctx)
	}
	return nil
}

// Inventory is a discovered planning input set.
type Inventory struct {
	Workloads []models.Workload     `json:"workloads"`
	Pools     []models.ResourcePool `json:"pools"`
}

// Discover walks the datacenter and returns every cluster as a pool and
// every VM as a workload attributed to no pool; placement is this
// engine's job, not vCenter's.
func (v *VSphereClient) Discover(ctx context.Context) (Inventory, error) {
	pools, err := v.discoverPools(ctx)
	if err != nil {
		return Inventory{}, err
	}
	workloads, err := v.discoverWorkloads(ctx)
	if err != nil {
		return Inventory{}, err
	}
	slog.Info("vSphere inventory discovered", "pools", len(pools), "workloads", len(workloads))
	return Inventory{Workloads: workloads, Pools: pools}, nil
}

// discoverPools maps each compute cluster to a resource pool: CPU from
// host core counts, memory from host totals, storage from the cluster's
// attached datastores.
func (v *VSphereClient) discoverPools(ctx context.Context) ([]models.ResourcePool, error) {
	clusters, err := v.finder.ClusterComputeResourceList(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("listing clusters: %w", err)
	}

	pools := make([]models.ResourcePool, 0, len(clusters))
	for _, cluster := range clusters {
		var clusterMo mo.ClusterComputeResource
		if err := cluster.Properties(ctx, cluster.Reference(), []string{"host", "datastore"}, &clusterMo); err != nil {
			return nil, fmt.Errorf("cluster %s properties: %w", cluster.Name(), err)
		}

		var capacity models.ResourceVector
		nodeCount := 0
		for _, hostRef := range clusterMo.Host {
			host := object.NewHostSystem(v.client.Client, hostRef)
			var hostMo mo.HostSystem
			if err := host.Properties(ctx, host.Reference(), []string{"summary", "runtime"}, &hostMo); err != nil {
				return nil, fmt.Errorf("host properties: %w", err)
			}
			if hostMo.Runtime.InMaintenanceMode {
				continue
			}
			capacity.CPU += float64(hostMo.Summary.Hardware.NumCpuCores)
			capacity.Memory += float64(hostMo.Summary.Hardware.MemorySize) / (1024 * 1024 * 1024)
			nodeCount++
		}

		pc := property.DefaultCollector(v.client.Client)
		for _, dsRef := range clusterMo.Datastore {
			var dsMo mo.Datastore
			if err := pc.RetrieveOne(ctx, dsRef, []string{"summary"}, &dsMo); err != nil {
				continue // Skip datastores we cannot read
			}
			capacity.Storage += float64(dsMo.Summary.Capacity) / (1024 * 1024 * 1024)
		}

		pools = append(pools, models.ResourcePool{
			ID:         cluster.Name(),
			Capacity:   capacity,
			Overcommit: v.overcommit,
			NodeCount:  nodeCount,
		})
	}
	return pools, nil
}

// discoverWorkloads converts every VM into a workload: configured vCPUs,
// configured memory, and committed storage.
func (v *VSphereClient) discoverWorkloads(ctx context.Context) ([]models.Workload, error) {
	vms, err := v.finder.VirtualMachineList(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("listing VMs: %w", err)
	}

	workloads := make([]models.Workload, 0, len(vms))
	for _, vm := range vms {
		var vmMo mo.VirtualMachine
		if err := vm.Properties(ctx, vm.Reference(), []string{"config", "runtime", "summary"}, &vmMo); err != nil {
			continue // Skip VMs we can't read
		}

		var demand models.ResourceVector
		if vmMo.Config != nil {
			demand.CPU = float64(vmMo.Config.Hardware.NumCPU)
			demand.Memory = float64(vmMo.Config.Hardware.MemoryMB) / 1024
		}
		demand.Storage = float64(vmMo.Summary.Storage.Committed) / (1024 * 1024 * 1024)

		workloads = append(workloads, models.Workload{
			ID:         vm.Name(),
			Demand:     demand,
			PowerState: string(vmMo.Runtime.PowerState),
		})
	}
	return workloads, nil
}
