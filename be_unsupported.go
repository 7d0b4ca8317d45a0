//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package main

// RGB565 words are written low byte first, which is what the framebuffer
// expects on little-endian hosts only.
var _ = "fbcam requires a little-endian architecture" + 1
