// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/boxblur"
	"github.com/gogpu/boxblur/internal/cache"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// WebGPU default limits. Every conformant adapter supports at least these.
const (
	maxWorkgroupInvocations = 256
	maxWorkgroupStorage     = 16384
)

// maxCachedPipelines bounds the compiled specializations kept per device.
const maxCachedPipelines = 64

// DefaultFenceTimeout bounds how long Launch waits for the GPU.
const DefaultFenceTimeout = 5 * time.Second

var (
	// ErrNotReady is returned by Launch before a device is available.
	ErrNotReady = errors.New("gpu: launcher has no device")

	// ErrFenceTimeout is returned when the GPU does not signal completion
	// within the fence timeout.
	ErrFenceTimeout = errors.New("gpu: fence wait timed out")

	// ErrBadRequest is returned for a launch whose buffers or launch grid do
	// not match the grid size.
	ErrBadRequest = errors.New("gpu: invalid launch request")
)

// Launcher runs box-blur kernels as wgpu/hal compute pipelines.
// It implements boxblur.Launcher.
//
// Each distinct (variant, group shape, tile size) is compiled once with naga
// and kept in an LRU cache; evicted pipelines are destroyed. Launches are
// serialized.
type Launcher struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipelines  *cache.Cache[kernelKey, *kernelPipeline]

	fenceTimeout   time.Duration
	adapterName    string
	gpuReady       bool
	externalDevice bool // true when using a shared device (don't destroy on Close)
}

// kernelPipeline is a compiled kernel specialization.
type kernelPipeline struct {
	shader   hal.ShaderModule
	pipeline hal.ComputePipeline
}

var (
	_ boxblur.Launcher            = (*Launcher)(nil)
	_ boxblur.DeviceProviderAware = (*Launcher)(nil)
)

// Option configures a Launcher.
type Option func(*Launcher)

// WithFenceTimeout sets how long Launch waits for the GPU to finish.
// Non-positive durations keep DefaultFenceTimeout.
func WithFenceTimeout(d time.Duration) Option {
	return func(l *Launcher) {
		if d > 0 {
			l.fenceTimeout = d
		}
	}
}

// New creates a GPU launcher. No device is opened until Init.
func New(opts ...Option) *Launcher {
	l := &Launcher{fenceTimeout: DefaultFenceTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns "wgpu".
func (l *Launcher) Name() string { return "wgpu" }

// Limits reports the WebGPU default per-workgroup budget.
func (l *Launcher) Limits() boxblur.Limits {
	return boxblur.Limits{
		MaxGroupThreads: maxWorkgroupInvocations,
		MaxScratchBytes: maxWorkgroupStorage,
	}
}

// FenceTimeout returns the configured fence timeout.
func (l *Launcher) FenceTimeout() time.Duration { return l.fenceTimeout }

// PipelineStats reports the compiled-pipeline cache. It is zero before Init.
func (l *Launcher) PipelineStats() cache.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pipelines == nil {
		return cache.Stats{}
	}
	return l.pipelines.Stats()
}

// AdapterName returns the name of the selected adapter, or "" before Init.
func (l *Launcher) AdapterName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.adapterName
}

// SetLogger sets the logger for the GPU launcher.
// Called by boxblur.SetLogger to propagate the logger.
func (l *Launcher) SetLogger(lg *slog.Logger) {
	setLogger(lg)
}

// Init opens a Vulkan device. Unlike a rendering accelerator there is no
// partial fallback: if no device can be opened the error is returned and the
// launcher must not be registered.
func (l *Launcher) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gpuReady {
		return nil
	}
	if err := l.initGPU(); err != nil {
		l.releaseLocked()
		return err
	}
	return nil
}

// Close releases every pipeline and, unless the device is shared, the
// device itself.
func (l *Launcher) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseLocked()
}

func (l *Launcher) releaseLocked() {
	l.destroyPipelines()
	if !l.externalDevice {
		if l.device != nil {
			l.device.Destroy()
		}
		if l.instance != nil {
			l.instance.Destroy()
		}
	}
	l.device = nil
	l.instance = nil
	l.queue = nil
	l.gpuReady = false
	l.externalDevice = false
}

// SetDeviceProvider switches the launcher to a GPU device owned by the host
// application. The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func (l *Launcher) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.releaseLocked()
	l.device = device
	l.queue = queue
	l.externalDevice = true
	l.adapterName = "shared"

	if err := l.createLayouts(); err != nil {
		l.gpuReady = false
		return fmt.Errorf("gpu: create layouts with shared device: %w", err)
	}
	l.gpuReady = true
	slogger().Info("gpu: switched to shared GPU device")
	return nil
}

func (l *Launcher) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	l.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	l.device = openDev.Device
	l.queue = openDev.Queue
	if err := l.createLayouts(); err != nil {
		return fmt.Errorf("create layouts: %w", err)
	}
	l.adapterName = selected.Info.Name
	l.gpuReady = true
	slogger().Info("gpu: box-blur launcher initialized", "adapter", selected.Info.Name)
	return nil
}

// createLayouts builds the bind group and pipeline layouts shared by every
// kernel: uniform params, read-only src, read-write dst.
func (l *Launcher) createLayouts() error {
	bindLayout, err := l.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "boxblur_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	l.bindLayout = bindLayout

	pipeLayout, err := l.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "boxblur_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{l.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	l.pipeLayout = pipeLayout
	device := l.device
	l.pipelines = cache.New(maxCachedPipelines, func(key kernelKey, kp *kernelPipeline) {
		device.DestroyComputePipeline(kp.pipeline)
		device.DestroyShaderModule(kp.shader)
		slogger().Debug("gpu: kernel released", "kernel", key.Label())
	})
	return nil
}

// pipelineFor returns the cached pipeline for key, compiling it on first use.
func (l *Launcher) pipelineFor(key kernelKey) (*kernelPipeline, error) {
	return l.pipelines.GetOrCreate(key, func() (*kernelPipeline, error) {
		return l.buildPipeline(key)
	})
}

func (l *Launcher) buildPipeline(key kernelKey) (*kernelPipeline, error) {
	spirv, err := compileShader(key)
	if err != nil {
		return nil, err
	}
	shader, err := l.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  key.Label(),
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, &boxblur.BuildError{Kernel: key.Label(), Err: fmt.Errorf("create shader module: %w", err)}
	}
	pipeline, err := l.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: key.Label(), Layout: l.pipeLayout,
		Compute: hal.ComputeState{Module: shader, EntryPoint: "main"},
	})
	if err != nil {
		l.device.DestroyShaderModule(shader)
		return nil, &boxblur.BuildError{Kernel: key.Label(), Err: fmt.Errorf("create compute pipeline: %w", err)}
	}
	slogger().Debug("gpu: kernel compiled", "kernel", key.Label(), "spirv_words", len(spirv))
	return &kernelPipeline{shader: shader, pipeline: pipeline}, nil
}

func (l *Launcher) destroyPipelines() {
	if l.device == nil {
		return
	}
	if l.pipelines != nil {
		l.pipelines.Clear()
		l.pipelines = nil
	}
	if l.pipeLayout != nil {
		l.device.DestroyPipelineLayout(l.pipeLayout)
		l.pipeLayout = nil
	}
	if l.bindLayout != nil {
		l.device.DestroyBindGroupLayout(l.bindLayout)
		l.bindLayout = nil
	}
}

// launchBuffers are the per-launch GPU buffers.
type launchBuffers struct {
	params  hal.Buffer
	src     hal.Buffer
	dst     hal.Buffer
	staging hal.Buffer
	size    uint64
}

func (l *Launcher) createBuffers(size uint64) (*launchBuffers, error) {
	b := &launchBuffers{size: size}
	descs := []struct {
		dst   *hal.Buffer
		label string
		size  uint64
		usage gputypes.BufferUsage
	}{
		{&b.params, "boxblur_params", paramsSize, gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&b.src, "boxblur_src", size, gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst},
		{&b.dst, "boxblur_dst", size, gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc},
		{&b.staging, "boxblur_staging", size, gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst},
	}
	for _, d := range descs {
		buf, err := l.device.CreateBuffer(&hal.BufferDescriptor{Label: d.label, Size: d.size, Usage: d.usage})
		if err != nil {
			l.destroyBuffers(b)
			return nil, fmt.Errorf("create %s buffer: %w", d.label, err)
		}
		*d.dst = buf
	}
	return b, nil
}

func (l *Launcher) destroyBuffers(b *launchBuffers) {
	for _, buf := range []hal.Buffer{b.params, b.src, b.dst, b.staging} {
		if buf != nil {
			l.device.DestroyBuffer(buf)
		}
	}
}

// checkRequest rejects launches that would leave part of Dst unwritten.
func checkRequest(req *boxblur.LaunchRequest) error {
	n := req.Width * req.Height
	switch {
	case req.Width <= 0 || req.Height <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrBadRequest, req.Width, req.Height)
	case len(req.Src) != n || len(req.Dst) != n:
		return fmt.Errorf("%w: src/dst have %d/%d samples, want %d", ErrBadRequest, len(req.Src), len(req.Dst), n)
	case req.Grid.GlobalWidth() != req.Width || req.Grid.GlobalHeight() != req.Height:
		return fmt.Errorf("%w: launch grid covers %dx%d, grid is %dx%d", ErrBadRequest,
			req.Grid.GlobalWidth(), req.Grid.GlobalHeight(), req.Width, req.Height)
	}
	return nil
}

// Launch uploads req.Src, dispatches GroupsX x GroupsY workgroups, waits on
// a fence and reads the result back into req.Dst.
func (l *Launcher) Launch(req *boxblur.LaunchRequest) error {
	if err := checkRequest(req); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.gpuReady {
		return ErrNotReady
	}

	key := keyFor(req)
	kp, err := l.pipelineFor(key)
	if err != nil {
		return err
	}
	stats := l.pipelines.Stats()
	slogger().Debug("gpu: launch",
		"id", req.ID,
		"kernel", key.Label(),
		"cached_pipelines", stats.Len,
		"cache_hit_rate", stats.HitRate,
		"cache_evictions", stats.Evictions)

	size := uint64(len(req.Src)) * 4
	bufs, err := l.createBuffers(size)
	if err != nil {
		return err
	}
	defer l.destroyBuffers(bufs)

	l.queue.WriteBuffer(bufs.params, 0, packParams(req))
	l.queue.WriteBuffer(bufs.src, 0, packSamples(req.Src))

	bindGroup, err := l.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "boxblur_bind_group",
		Layout: l.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: bufs.params.NativeHandle(), Offset: 0, Size: paramsSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: bufs.src.NativeHandle(), Offset: 0, Size: size}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: bufs.dst.NativeHandle(), Offset: 0, Size: size}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer l.device.DestroyBindGroup(bindGroup)

	slogger().Debug("gpu: dispatch",
		"id", req.ID,
		"kernel", keyFor(req).Label(),
		"groups", [2]int{req.Grid.GroupsX, req.Grid.GroupsY},
		"bytes", size)

	readback, err := l.dispatch(kp, bindGroup, bufs, req.Grid)
	if err != nil {
		return err
	}
	unpackSamples(readback, req.Dst)
	return nil
}

// dispatch records one compute pass plus the copy to staging, submits it and
// waits for the fence.
func (l *Launcher) dispatch(kp *kernelPipeline, bindGroup hal.BindGroup, bufs *launchBuffers, lg boxblur.LaunchGrid) ([]byte, error) {
	encoder, err := l.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "boxblur_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("boxblur"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "boxblur_pass"})
	computePass.SetPipeline(kp.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.Dispatch(uint32(lg.GroupsX), uint32(lg.GroupsY), 1) //nolint:gosec // planner-validated
	computePass.End()

	encoder.CopyBufferToBuffer(bufs.dst, bufs.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: bufs.size},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer l.device.FreeCommandBuffer(cmdBuf)

	fence, err := l.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer l.device.DestroyFence(fence)
	if err := l.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := l.device.Wait(fence, 1, l.fenceTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for GPU: %w", err)
	}
	if !fenceOK {
		return nil, fmt.Errorf("%w after %v", ErrFenceTimeout, l.fenceTimeout)
	}

	readback := make([]byte, bufs.size)
	if err := l.queue.ReadBuffer(bufs.staging, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return readback, nil
}
