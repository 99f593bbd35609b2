// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/latte/internal/haltest"
	"github.com/gogpu/latte/regs"
)

func bindings(entries []gputypes.BindGroupLayoutEntry) []uint32 {
	out := make([]uint32, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Binding)
	}
	return out
}

func TestStageEntries(t *testing.T) {
	desc := &ShaderDesc{UniformBlocks: 0b101, UsesRegisterFile: true, StreamOut: 0b10}
	desc.Samplers[1] = SamplerUsage{Used: true, Comparison: true}
	desc.Textures[3] = TextureUsage{Used: true, ViewDim: gputypes.TextureViewDimension2DArray, SampleType: gputypes.TextureSampleTypeDepth}

	tests := []struct {
		name  string
		stage regs.Stage
		dx9   bool
		want  []uint32
	}{
		{
			name:  "vertex uniform blocks and stream out",
			stage: regs.StageVertex,
			want:  []uint32{1, textureBinding + 3, bufferBinding, bufferBinding + 2, streamOutBinding + 1},
		},
		{
			name:  "vertex register file",
			stage: regs.StageVertex,
			dx9:   true,
			want:  []uint32{1, textureBinding + 3, bufferBinding, streamOutBinding + 1},
		},
		{
			name:  "geometry ignores the register file",
			stage: regs.StageGeometry,
			dx9:   true,
			want:  []uint32{1, textureBinding + 3, bufferBinding, bufferBinding + 2},
		},
		{
			name:  "pixel has no stream out",
			stage: regs.StagePixel,
			want:  []uint32{1, textureBinding + 3, bufferBinding, bufferBinding + 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := stageEntries(tt.stage, desc, tt.dx9, 0b10)
			got := bindings(entries)
			if len(got) != len(tt.want) {
				t.Fatalf("bindings = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("bindings = %v, want %v", got, tt.want)
				}
			}
			if entries[0].Sampler == nil || entries[0].Sampler.Type != gputypes.SamplerBindingTypeComparison {
				t.Errorf("sampler entry = %+v, want comparison sampler", entries[0])
			}
			tex := entries[1].Texture
			if tex == nil || tex.ViewDimension != gputypes.TextureViewDimension2DArray || tex.SampleType != gputypes.TextureSampleTypeDepth {
				t.Errorf("texture entry = %+v", entries[1])
			}
			wantVis := gputypes.ShaderStageVertex
			if tt.stage == regs.StagePixel {
				wantVis = gputypes.ShaderStageFragment
			}
			for _, e := range entries {
				if e.Visibility != wantVis {
					t.Errorf("binding %d visibility = %v, want %v", e.Binding, e.Visibility, wantVis)
				}
			}
		})
	}

	if got := stageEntries(regs.StagePixel, nil, false, 0); got != nil {
		t.Errorf("stageEntries(nil) = %v, want nil", got)
	}
}

func TestLayoutKey(t *testing.T) {
	d := &ShaderDesc{UniformBlocks: 1}
	a := stageEntries(regs.StageVertex, d, false, 0)
	b := stageEntries(regs.StageVertex, d, false, 0)
	if layoutKey(a) != layoutKey(b) {
		t.Error("equal entries hash differently")
	}
	c := stageEntries(regs.StagePixel, d, false, 0)
	if layoutKey(a) == layoutKey(c) {
		t.Error("visibility does not change the layout key")
	}
	d.Textures[0] = TextureUsage{Used: true, ViewDim: gputypes.TextureViewDimension2D}
	e := stageEntries(regs.StageVertex, d, false, 0)
	d.Textures[0].ViewDim = gputypes.TextureViewDimension3D
	f := stageEntries(regs.StageVertex, d, false, 0)
	if layoutKey(e) == layoutKey(f) {
		t.Error("texture view dimension does not change the layout key")
	}
}

func TestBlendState(t *testing.T) {
	ctl := regs.CbBlendControl(regs.BlendBits(regs.BlendSrcAlpha, regs.BlendOneMinusSrcAlpha, regs.CombDstPlusSrc))
	got := blendState(ctl)
	want := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	}
	if got.Color != want || got.Alpha != want {
		t.Errorf("blendState() = %+v, want %+v for both components", got, want)
	}

	// Separate alpha takes its own factors.
	sep := regs.CbBlendControl(regs.BlendOne | regs.CombMaxDstSrc<<5 | regs.BlendOne<<8 |
		regs.BlendZero<<16 | regs.CombDstMinusSrc<<21 | regs.BlendDstAlpha<<24 | 1<<29)
	got = blendState(sep)
	if got.Color.Operation != gputypes.BlendOperationMax || got.Color.SrcFactor != gputypes.BlendFactorOne {
		t.Errorf("color = %+v", got.Color)
	}
	wantAlpha := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorZero,
		DstFactor: gputypes.BlendFactorDstAlpha,
		Operation: gputypes.BlendOperationReverseSubtract,
	}
	if got.Alpha != wantAlpha {
		t.Errorf("alpha = %+v, want %+v", got.Alpha, wantAlpha)
	}
}

func TestBlendFactorConstants(t *testing.T) {
	tests := map[uint32]gputypes.BlendFactor{
		regs.BlendConstantColor:         gputypes.BlendFactorConstant,
		regs.BlendConstantAlpha:         gputypes.BlendFactorConstant,
		regs.BlendOneMinusConstantColor: gputypes.BlendFactorOneMinusConstant,
		regs.BlendOneMinusConstantAlpha: gputypes.BlendFactorOneMinusConstant,
		regs.BlendSrcAlphaSaturate:      gputypes.BlendFactorSrcAlphaSaturated,
		31:                              gputypes.BlendFactorOne,
	}
	for f, want := range tests {
		if got := blendFactor(f); got != want {
			t.Errorf("blendFactor(%d) = %v, want %v", f, got, want)
		}
	}
}

func testShader(stage regs.Stage, lo uint64) *shader {
	return &shader{key: shaderKey{stage: stage, lo: lo}, desc: &ShaderDesc{EntryPoint: "main"}}
}

func TestPipelineKey(t *testing.T) {
	base := func() *pipelineState {
		st := &pipelineState{topology: gputypes.PrimitiveTopologyTriangleList}
		st.shaders[regs.StageVertex] = testShader(regs.StageVertex, 1)
		st.shaders[regs.StagePixel] = testShader(regs.StagePixel, 2)
		st.colors = []colorTarget{{slot: 0, format: gputypes.TextureFormatRGBA8Unorm, writeMask: 0xF}}
		return st
	}
	ref := base().key()
	if base().key() != ref {
		t.Fatal("equal states hash differently")
	}

	changes := map[string]func(st *pipelineState){
		"pixel shader": func(st *pipelineState) { st.shaders[regs.StagePixel] = testShader(regs.StagePixel, 3) },
		"topology":     func(st *pipelineState) { st.topology = gputypes.PrimitiveTopologyLineList },
		"write mask":   func(st *pipelineState) { st.colors[0].writeMask = 0x7 },
		"target slot":  func(st *pipelineState) { st.colors[0].slot = 1 },
		"blend":        func(st *pipelineState) { st.colors[0].blend = true; st.colors[0].control = 1 },
		"depth format": func(st *pipelineState) { st.depthFormat = gputypes.TextureFormatDepth32Float },
		"depth control": func(st *pipelineState) {
			st.depthControl = regs.DbDepthControl(1<<1 | uint32(regs.RefLess)<<4)
		},
		"vertex stride": func(st *pipelineState) {
			st.vertexBuffers = []gputypes.VertexBufferLayout{{ArrayStride: 16}}
		},
		"bindings": func(st *pipelineState) {
			st.entries[regs.StagePixel] = stageEntries(regs.StagePixel, &ShaderDesc{UniformBlocks: 1}, false, 0)
		},
	}
	for name, change := range changes {
		st := base()
		change(st)
		if st.key() == ref {
			t.Errorf("changing the %s keeps the pipeline key", name)
		}
	}

	// Blend control is ignored while blending is off.
	st := base()
	st.colors[0].control = 0x1234
	if st.key() != ref {
		t.Error("blend control of a non-blending target changes the pipeline key")
	}
}

func TestPipelineCache(t *testing.T) {
	device, _ := haltest.New()
	r := newRetirer(device)
	c := newPipelineCache(device, 1, r)
	defer c.destroy()

	st := &pipelineState{topology: gputypes.PrimitiveTopologyTriangleList}
	st.shaders[regs.StageVertex] = testShader(regs.StageVertex, 1)
	st.shaders[regs.StagePixel] = testShader(regs.StagePixel, 2)
	st.colors = []colorTarget{
		{slot: 0, format: gputypes.TextureFormatRGBA8Unorm, writeMask: 0xF, blend: true,
			control: regs.CbBlendControl(regs.BlendBits(regs.BlendOne, regs.BlendOneMinusSrcAlpha, regs.CombDstPlusSrc))},
		{slot: 2, format: gputypes.TextureFormatRGBA8Unorm, writeMask: 0xF},
	}

	p, err := c.get(st)
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if p.targets != 0b101 || p.premultiplied != 0b001 || !p.needsPremultiplied {
		t.Errorf("targets %#b premultiplied %#b needs %v, want 0b101 0b1 true", p.targets, p.premultiplied, p.needsPremultiplied)
	}
	again, err := c.get(st)
	if err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if again != p || device.RenderPipelines != 1 {
		t.Errorf("render pipelines = %d, want the cached pipeline", device.RenderPipelines)
	}

	// A second state evicts the first into the retirer.
	st.topology = gputypes.PrimitiveTopologyPointList
	if _, err := c.get(st); err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if c.len() != 1 || r.len() != 1 {
		t.Errorf("cached %d retired %d, want 1 and 1", c.len(), r.len())
	}
	if len(c.pipelineLayouts) != 1 {
		t.Errorf("pipeline layouts = %d, want one shared layout", len(c.pipelineLayouts))
	}
}
