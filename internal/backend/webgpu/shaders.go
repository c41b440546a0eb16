// Package webgpu implements a GPU tensor backend over WebGPU using
// go-webgpu's zero-CGO bindings. Float32 arithmetic, matrix products, and
// activations run as WGSL compute shaders; everything else is delegated
// to the CPU backend.
package webgpu

// WGSL compute shaders, embedded as string constants.

// workgroupSize is the number of threads per workgroup for 1D dispatches.
const workgroupSize = 256

const binaryShaderHead = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
`

const addShader = binaryShaderHead + `        result[idx] = a[idx] + b[idx];
    }
}
`

const subShader = binaryShaderHead + `        result[idx] = a[idx] - b[idx];
    }
}
`

const mulShader = binaryShaderHead + `        result[idx] = a[idx] * b[idx];
    }
}
`

const divShader = binaryShaderHead + `        result[idx] = a[idx] / b[idx];
    }
}
`

const unaryShaderHead = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
`

const reluShader = unaryShaderHead + `        result[idx] = max(0.0, input[idx]);
    }
}
`

const expShader = unaryShaderHead + `        result[idx] = exp(input[idx]);
    }
}
`

const logShader = unaryShaderHead + `        result[idx] = log(input[idx]);
    }
}
`

const sqrtShader = unaryShaderHead + `        result[idx] = sqrt(input[idx]);
    }
}
`

// Softplus in the overflow-stable form max(x, 0) + log(1 + exp(-|x|)).
const softplusShader = unaryShaderHead + `        let x = input[idx];
        result[idx] = max(x, 0.0) + log(1.0 + exp(-abs(x)));
    }
}
`

// matmulShader computes C = A @ B with A [M, K], B [K, N], C [M, N].
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,
    K: u32,
    N: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.M || col >= params.N) {
        return;
    }

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        sum = sum + a[row * params.K + k] * b[k * params.N + col];
    }
    result[row * params.N + col] = sum;
}
`

// transposeShader transposes a 2D matrix.
const transposeShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.rows || col >= params.cols) {
        return;
    }
    result[col * params.rows + row] = input[row * params.cols + col];
}
`

// softmaxShader normalizes each row of a [batch, classes] matrix with the
// max-subtraction trick. One thread per row.
const softmaxShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    batch_size: u32,
    num_classes: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.x;
    if (row >= params.batch_size) {
        return;
    }
    let base = row * params.num_classes;

    var max_val: f32 = input[base];
    for (var j: u32 = 1u; j < params.num_classes; j = j + 1u) {
        max_val = max(max_val, input[base + j]);
    }

    var sum: f32 = 0.0;
    for (var j: u32 = 0u; j < params.num_classes; j = j + 1u) {
        let e = exp(input[base + j] - max_val);
        result[base + j] = e;
        sum = sum + e;
    }
    for (var j: u32 = 0u; j < params.num_classes; j = j + 1u) {
        result[base + j] = result[base + j] / sum;
    }
}
`
