package regs

// Register offsets. Names follow the hardware register names.
//
//nolint:revive,stylecheck // hardware register names
const (
	VGT_PRIMITIVE_TYPE Register = 0x8958
	SQ_CONFIG          Register = 0x8C00

	DB_DEPTH_SIZE    Register = 0x28000
	DB_DEPTH_VIEW    Register = 0x28004
	DB_DEPTH_BASE    Register = 0x2800C
	DB_DEPTH_INFO    Register = 0x28010
	DB_DEPTH_CONTROL Register = 0x28800

	CB_COLOR0_BASE    Register = 0x28040
	CB_COLOR0_SIZE    Register = 0x28060
	CB_COLOR0_VIEW    Register = 0x28080
	CB_COLOR0_INFO    Register = 0x280A0
	CB_TARGET_MASK    Register = 0x28238
	CB_BLEND0_CONTROL Register = 0x28780
	CB_COLOR_CONTROL  Register = 0x28808

	SQ_ALU_CONST_BUFFER_SIZE_PS_0 Register = 0x28140
	SQ_ALU_CONST_BUFFER_SIZE_VS_0 Register = 0x28180
	SQ_ALU_CONST_BUFFER_SIZE_GS_0 Register = 0x281C0

	PA_SC_GENERIC_SCISSOR_TL Register = 0x28240
	PA_SC_GENERIC_SCISSOR_BR Register = 0x28244

	SX_ALPHA_TEST_CONTROL Register = 0x28410
	SX_ALPHA_REF          Register = 0x28438

	PA_CL_VPORT_XSCALE_0  Register = 0x2843C
	PA_CL_VPORT_XOFFSET_0 Register = 0x28440
	PA_CL_VPORT_YSCALE_0  Register = 0x28444
	PA_CL_VPORT_YOFFSET_0 Register = 0x28448
	PA_CL_VPORT_ZSCALE_0  Register = 0x2844C
	PA_CL_VPORT_ZOFFSET_0 Register = 0x28450

	PA_CL_CLIP_CNTL Register = 0x28810
	PA_CL_VTE_CNTL  Register = 0x28818

	SQ_PGM_START_PS Register = 0x28840
	SQ_PGM_SIZE_PS  Register = 0x28844
	SQ_PGM_START_VS Register = 0x28858
	SQ_PGM_SIZE_VS  Register = 0x2885C
	SQ_PGM_START_GS Register = 0x2886C
	SQ_PGM_SIZE_GS  Register = 0x28870

	SQ_ALU_CONST_CACHE_PS_0 Register = 0x28940
	SQ_ALU_CONST_CACHE_VS_0 Register = 0x28980
	SQ_ALU_CONST_CACHE_GS_0 Register = 0x289C0

	VGT_GS_MODE           Register = 0x28A40
	VGT_DMA_INDEX_TYPE    Register = 0x28A7C
	VGT_DMA_NUM_INSTANCES Register = 0x28A88
	VGT_STRMOUT_EN        Register = 0x28AB0

	VGT_STRMOUT_BUFFER_SIZE_0   Register = 0x28AD0
	VGT_STRMOUT_VTX_STRIDE_0    Register = 0x28AD4
	VGT_STRMOUT_BUFFER_BASE_0   Register = 0x28AD8
	VGT_STRMOUT_BUFFER_OFFSET_0 Register = 0x28ADC

	VGT_STRMOUT_BUFFER_EN                      Register = 0x28B20
	VGT_STRMOUT_DRAW_OPAQUE_OFFSET             Register = 0x28B28
	VGT_STRMOUT_DRAW_OPAQUE_BUFFER_FILLED_SIZE Register = 0x28B2C
	VGT_STRMOUT_DRAW_OPAQUE_VERTEX_STRIDE      Register = 0x28B30

	SQ_ALU_CONSTANT0_0      Register = 0x30000
	SQ_TEX_RESOURCE_WORD0_0 Register = 0x38000
	SQ_TEX_SAMPLER_WORD0_0  Register = 0x3C000

	SQ_VTX_BASE_VTX_LOC   Register = 0x3CFF0
	SQ_VTX_START_INST_LOC Register = 0x3CFF4
)

// Per-stage bank strides and offsets.
const (
	texResourceStride = 0x1C
	texSamplerStride  = 0xC
	aluConstantStride = 0x10
	strmoutStride     = 0x10

	// Resource and sampler slot bases of each stage.
	psResourceBase = 0
	vsResourceBase = 160
	gsResourceBase = 336
	psSamplerBase  = 0
	vsSamplerBase  = 18
	gsSamplerBase  = 36

	// Vertex fetch buffers live in the vertex stage resource bank after
	// its texture slots.
	attribResourceBase = vsResourceBase + MaxTextures

	psAluConstantBase = 0
	vsAluConstantBase = 256
	gsAluConstantBase = 512 // unused by the hardware; GS reads uniform blocks
)

// ColorBase returns CB_COLORn_BASE.
func ColorBase(n int) Register { return CB_COLOR0_BASE + Register(4*n) }

// ColorSize returns CB_COLORn_SIZE.
func ColorSize(n int) Register { return CB_COLOR0_SIZE + Register(4*n) }

// ColorView returns CB_COLORn_VIEW.
func ColorView(n int) Register { return CB_COLOR0_VIEW + Register(4*n) }

// ColorInfo returns CB_COLORn_INFO.
func ColorInfo(n int) Register { return CB_COLOR0_INFO + Register(4*n) }

// BlendControl returns CB_BLENDn_CONTROL.
func BlendControl(n int) Register { return CB_BLEND0_CONTROL + Register(4*n) }

// TexResource returns word w of texture resource slot of stage s.
func TexResource(s Stage, slot, w int) Register {
	base := psResourceBase
	switch s {
	case StageVertex:
		base = vsResourceBase
	case StageGeometry:
		base = gsResourceBase
	}
	return SQ_TEX_RESOURCE_WORD0_0 + Register((base+slot)*texResourceStride+4*w)
}

// AttribResource returns word w of vertex fetch buffer slot.
func AttribResource(slot, w int) Register {
	return SQ_TEX_RESOURCE_WORD0_0 + Register((attribResourceBase+slot)*texResourceStride+4*w)
}

// TexSampler returns word w of sampler slot of stage s.
func TexSampler(s Stage, slot, w int) Register {
	base := psSamplerBase
	switch s {
	case StageVertex:
		base = vsSamplerBase
	case StageGeometry:
		base = gsSamplerBase
	}
	return SQ_TEX_SAMPLER_WORD0_0 + Register((base+slot)*texSamplerStride+4*w)
}

// AluConstant returns the first register of ALU constant vector i of
// stage s.
func AluConstant(s Stage, i int) Register {
	base := psAluConstantBase
	switch s {
	case StageVertex:
		base = vsAluConstantBase
	case StageGeometry:
		base = gsAluConstantBase
	}
	return SQ_ALU_CONSTANT0_0 + Register((base+i)*aluConstantStride)
}

// AluConstBufferSize returns SQ_ALU_CONST_BUFFER_SIZE_<stage>_n.
func AluConstBufferSize(s Stage, n int) Register {
	base := SQ_ALU_CONST_BUFFER_SIZE_PS_0
	switch s {
	case StageVertex:
		base = SQ_ALU_CONST_BUFFER_SIZE_VS_0
	case StageGeometry:
		base = SQ_ALU_CONST_BUFFER_SIZE_GS_0
	}
	return base + Register(4*n)
}

// AluConstCache returns SQ_ALU_CONST_CACHE_<stage>_n, the base address
// of uniform block n.
func AluConstCache(s Stage, n int) Register {
	base := SQ_ALU_CONST_CACHE_PS_0
	switch s {
	case StageVertex:
		base = SQ_ALU_CONST_CACHE_VS_0
	case StageGeometry:
		base = SQ_ALU_CONST_CACHE_GS_0
	}
	return base + Register(4*n)
}

// PgmStart returns SQ_PGM_START of stage s.
func PgmStart(s Stage) Register {
	switch s {
	case StageVertex:
		return SQ_PGM_START_VS
	case StageGeometry:
		return SQ_PGM_START_GS
	default:
		return SQ_PGM_START_PS
	}
}

// PgmSize returns SQ_PGM_SIZE of stage s.
func PgmSize(s Stage) Register {
	switch s {
	case StageVertex:
		return SQ_PGM_SIZE_VS
	case StageGeometry:
		return SQ_PGM_SIZE_GS
	default:
		return SQ_PGM_SIZE_PS
	}
}

// StrmoutBufferSize returns VGT_STRMOUT_BUFFER_SIZE_n.
func StrmoutBufferSize(n int) Register {
	return VGT_STRMOUT_BUFFER_SIZE_0 + Register(n*strmoutStride)
}

// StrmoutVtxStride returns VGT_STRMOUT_VTX_STRIDE_n.
func StrmoutVtxStride(n int) Register {
	return VGT_STRMOUT_VTX_STRIDE_0 + Register(n*strmoutStride)
}

// StrmoutBufferBase returns VGT_STRMOUT_BUFFER_BASE_n.
func StrmoutBufferBase(n int) Register {
	return VGT_STRMOUT_BUFFER_BASE_0 + Register(n*strmoutStride)
}

// StrmoutBufferOffset returns VGT_STRMOUT_BUFFER_OFFSET_n.
func StrmoutBufferOffset(n int) Register {
	return VGT_STRMOUT_BUFFER_OFFSET_0 + Register(n*strmoutStride)
}
