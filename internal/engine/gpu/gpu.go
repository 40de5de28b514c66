package gpu

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/neildanson/sdf/internal/scene"
)

// gpuRenderer owns a hidden GLFW window and GL resources used for compute rendering.
type gpuRenderer struct {
	initOnce    sync.Once
	initErr     error
	window      *glfw.Window
	program     uint32
	imgTexture  uint32
	pbo         uint32
	programSSBO uint32
	width       int
	height      int
	// accum holds the weighted sum of pass results (R,G,B per pixel).
	accum []float32
	tmp   []float32
}

// RenderConfig is a minimal copy of engine.RenderConfig to avoid import cycles.
type RenderConfig struct {
	Width        int
	Height       int
	SamplesPerPx int
	MaxBounces   int
	Seed         int64
}

// passSamples returns how many samples each dispatch traces. Long dispatches
// trip driver watchdogs, so large sample counts are split into passes.
// Overridable through SDF_GPU_PASS_SAMPLES.
var (
	passSamplesOnce sync.Once
	passSamplesVal  int
)

func passSamples() int {
	passSamplesOnce.Do(func() {
		passSamplesVal = 4
		if env := os.Getenv("SDF_GPU_PASS_SAMPLES"); env != "" {
			if n, err := strconv.Atoi(env); err == nil && n > 0 && n <= 1024 {
				passSamplesVal = n
			}
		}
	})
	return passSamplesVal
}

// renderRequest is sent from callers to the dedicated GL worker goroutine.
type renderRequest struct {
	sc     *scene.Scene
	origin scene.Vec3
	cfg    RenderConfig
	dst    []float32
	done   chan error
}

var (
	renderer   gpuRenderer
	renderCh   chan renderRequest
	workerOnce sync.Once
)

// ensureWorker starts the dedicated GL worker goroutine exactly once.
func ensureWorker() {
	workerOnce.Do(func() {
		renderCh = make(chan renderRequest)
		go renderWorker()
	})
}

// renderWorker owns the GL context and processes all GPU render requests.
// It always runs on a single locked OS thread, which is required by OpenGL.
func renderWorker() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := renderer.initGL(); err != nil {
		log.Printf("gpu: initialization failed: %v", err)
		for req := range renderCh {
			req.done <- err
		}
		return
	}

	log.Printf("gpu: renderer initialized (%s)", gl.GoStr(gl.GetString(gl.RENDERER)))

	for req := range renderCh {
		err := renderer.renderOnce(req.sc, req.origin, req.cfg, req.dst)
		if err != nil {
			log.Printf("gpu: render error: %v", err)
		}
		req.done <- err
	}
}

// initGL must be called from the GL worker goroutine (locked OS thread).
func (r *gpuRenderer) initGL() error {
	r.initOnce.Do(func() {
		if err := glfw.Init(); err != nil {
			r.initErr = fmt.Errorf("glfw init: %w", err)
			return
		}

		glfw.WindowHint(glfw.Visible, glfw.False)
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 3)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

		w, err := glfw.CreateWindow(1, 1, "sdf-gpu-hidden", nil, nil)
		if err != nil {
			r.initErr = fmt.Errorf("glfw create window: %w", err)
			return
		}
		r.window = w
		w.MakeContextCurrent()

		if err := gl.Init(); err != nil {
			r.initErr = fmt.Errorf("gl init: %w", err)
			return
		}

		// Texture is sized on first use.
		gl.GenTextures(1, &r.imgTexture)
		gl.BindTexture(gl.TEXTURE_2D, r.imgTexture)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

		gl.GenBuffers(1, &r.pbo)
		gl.GenBuffers(1, &r.programSSBO)

		cs, err := compileShader(computeSrc, gl.COMPUTE_SHADER)
		if err != nil {
			r.initErr = fmt.Errorf("compile compute shader: %w", err)
			return
		}
		r.program = gl.CreateProgram()
		gl.AttachShader(r.program, cs)
		gl.LinkProgram(r.program)
		gl.DeleteShader(cs)

		var status int32
		gl.GetProgramiv(r.program, gl.LINK_STATUS, &status)
		if status == gl.FALSE {
			var logLen int32
			gl.GetProgramiv(r.program, gl.INFO_LOG_LENGTH, &logLen)
			msg := make([]byte, logLen+1)
			gl.GetProgramInfoLog(r.program, logLen, nil, &msg[0])
			r.initErr = fmt.Errorf("link compute program: %s", string(msg))
			return
		}
	})

	return r.initErr
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, csources, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		msg := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &msg[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("shader compile: %s", string(msg))
	}
	return shader, nil
}

// renderOnce traces the frame in passes and writes linear RGB into dst.
// It must run on the GL worker goroutine.
func (r *gpuRenderer) renderOnce(sc *scene.Scene, origin scene.Vec3, cfg RenderConfig, dst []float32) error {
	pixelCount := cfg.Width * cfg.Height
	if pixelCount <= 0 {
		return nil
	}
	if len(dst) < pixelCount*3 {
		return fmt.Errorf("destination holds %d floats, need %d", len(dst), pixelCount*3)
	}

	prog, err := Encode(sc.Fields)
	if err != nil {
		return err
	}

	// Resize texture if needed.
	if r.width != cfg.Width || r.height != cfg.Height {
		r.width = cfg.Width
		r.height = cfg.Height

		gl.BindTexture(gl.TEXTURE_2D, r.imgTexture)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(cfg.Width), int32(cfg.Height), 0, gl.RGBA, gl.FLOAT, nil)

		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, r.pbo)
		// 4 float32 per pixel
		gl.BufferData(gl.PIXEL_PACK_BUFFER, pixelCount*4*4, nil, gl.STREAM_READ)
		gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)

		r.accum = make([]float32, pixelCount*3)
		r.tmp = make([]float32, pixelCount*4)
	} else {
		clear(r.accum)
	}

	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 1, r.programSSBO)
	code := prog.Code
	if len(code) == 0 {
		// Zero-sized SSBOs are invalid; the shader never reads it with uInstrCount 0.
		code = make([]float32, instrStride)
	}
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, len(code)*4, gl.Ptr(code), gl.DYNAMIC_DRAW)

	gl.UseProgram(r.program)
	gl.BindImageTexture(0, r.imgTexture, 0, false, 0, gl.WRITE_ONLY, gl.RGBA32F)

	sky := sc.SkyOrDefault()
	gl.Uniform1i(r.uniform("uWidth"), int32(cfg.Width))
	gl.Uniform1i(r.uniform("uHeight"), int32(cfg.Height))
	gl.Uniform1i(r.uniform("uMaxBounces"), int32(cfg.MaxBounces))
	gl.Uniform1i(r.uniform("uInstrCount"), int32(prog.Len()))
	gl.Uniform3f(r.uniform("uOrigin"), float32(origin.X), float32(origin.Y), float32(origin.Z))
	gl.Uniform3f(r.uniform("uHorizon"), float32(sky.Horizon.R), float32(sky.Horizon.G), float32(sky.Horizon.B))
	gl.Uniform3f(r.uniform("uZenith"), float32(sky.Zenith.R), float32(sky.Zenith.G), float32(sky.Zenith.B))
	locSpp := r.uniform("uSamplesPerPx")
	locSeed := r.uniform("uFrameSeed")

	total := max(cfg.SamplesPerPx, 1)
	perPass := passSamples()
	groupsX := (cfg.Width + 15) / 16
	groupsY := (cfg.Height + 15) / 16

	for done, pass := 0, 0; done < total; pass++ {
		n := min(perPass, total-done)
		gl.Uniform1i(locSpp, int32(n))
		gl.Uniform1ui(locSeed, uint32(cfg.Seed)+uint32(pass)*0x9e3779b9)

		gl.DispatchCompute(uint32(groupsX), uint32(groupsY), 1)
		gl.MemoryBarrier(gl.SHADER_IMAGE_ACCESS_BARRIER_BIT | gl.TEXTURE_UPDATE_BARRIER_BIT | gl.PIXEL_BUFFER_BARRIER_BIT)

		if err := r.readBack(); err != nil {
			return err
		}
		w := float32(n)
		for i := 0; i < pixelCount; i++ {
			r.accum[i*3] += r.tmp[i*4] * w
			r.accum[i*3+1] += r.tmp[i*4+1] * w
			r.accum[i*3+2] += r.tmp[i*4+2] * w
		}
		done += n
	}

	inv := 1 / float32(total)
	for i := range r.accum {
		dst[i] = r.accum[i] * inv
	}
	return nil
}

func (r *gpuRenderer) uniform(name string) int32 {
	return gl.GetUniformLocation(r.program, gl.Str(name+"\x00"))
}

// readBack copies the texture into r.tmp through the pixel pack buffer.
func (r *gpuRenderer) readBack() error {
	gl.BindBuffer(gl.PIXEL_PACK_BUFFER, r.pbo)
	defer gl.BindBuffer(gl.PIXEL_PACK_BUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, r.imgTexture)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.FLOAT, nil)

	ptr := gl.MapBuffer(gl.PIXEL_PACK_BUFFER, gl.READ_ONLY)
	if ptr == nil {
		return fmt.Errorf("map pixel buffer: gl error 0x%x", gl.GetError())
	}
	src := ((*[1 << 28]float32)(ptr))[:len(r.tmp)]
	copy(r.tmp, src)
	gl.UnmapBuffer(gl.PIXEL_PACK_BUFFER)
	return nil
}

// Render schedules a GPU render on the dedicated GL worker and waits for
// completion. dst receives Width*Height linear RGB triples in row order.
func Render(sc *scene.Scene, origin scene.Vec3, cfg RenderConfig, dst []float32) error {
	ensureWorker()
	done := make(chan error, 1)
	renderCh <- renderRequest{
		sc:     sc,
		origin: origin,
		cfg:    cfg,
		dst:    dst,
		done:   done,
	}
	return <-done
}
