// Package webgpu provides embedded WGSL compute shaders for the spatial kernels.
package webgpu

// WGSL compute shaders for the four spatial kernels.
// Using string constants instead of embed for simplicity.
//
// Every shader shares the same prelude: boundary index folding, B-spline
// weight evaluation and per-axis basis construction. Shader-side numbering
// of boundary modes and spline orders matches the Go enums.

// workgroupSize is the default number of threads per workgroup.
const workgroupSize = 256

// maxWorkgroupsPerDim is the WebGPU guaranteed per-dimension dispatch limit.
const maxWorkgroupsPerDim = 65535

// spatialPrelude holds the helpers shared by all four spatial shaders.
//
// bound_resolve returns (resolved index, sign): sign 0 means the node falls
// on a dropped position and contributes nothing, -1 flips the weight sign.
// Far out-of-range indexes fold exactly through floor_mod, matching the
// CPU implementation bit for bit on the index arithmetic.
const spatialPrelude = `
struct Params {
    misc: vec4<u32>,    // dim, channels, nvox, extrapolate
    sizes: vec4<i32>,   // target spatial sizes
    strides: vec4<i32>, // target spatial strides, w = channel stride
    orders: vec4<u32>,
    bounds: vec4<u32>,
}

fn floor_mod(i: i32, n: i32) -> i32 {
    var m = i % n;
    if (m < 0) {
        m = m + n;
    }
    return m;
}

fn bound_resolve(index: i32, n: i32, mode: u32) -> vec2<i32> {
    if (mode == 7u) { // nocheck
        return vec2<i32>(index, 1);
    }
    if (index >= 0 && index < n) {
        return vec2<i32>(index, 1);
    }
    switch (mode) {
        case 0u: { // zero: everything outside is dropped
            return vec2<i32>(0, 0);
        }
        case 1u: { // replicate
            if (index < 0) {
                return vec2<i32>(0, 1);
            }
            return vec2<i32>(n - 1, 1);
        }
        case 2u: { // dct1: mirror about the edge nodes, period 2(n-1)
            if (n == 1) {
                return vec2<i32>(0, 1);
            }
            let n2 = 2 * (n - 1);
            var i = floor_mod(index, n2);
            if (i >= n) {
                i = n2 - i;
            }
            return vec2<i32>(i, 1);
        }
        case 3u: { // dct2: mirror about half-voxel edges, period 2n
            let n2 = 2 * n;
            var i = floor_mod(index, n2);
            if (i >= n) {
                i = n2 - 1 - i;
            }
            return vec2<i32>(i, 1);
        }
        case 4u: { // dst1: antimirror with zero nodes at -1 and n, period 2(n+1)
            let n2 = 2 * (n + 1);
            let i = floor_mod(index + 1, n2);
            if (i == 0 || i == n + 1) {
                return vec2<i32>(0, 0);
            }
            if (i <= n) {
                return vec2<i32>(i - 1, 1);
            }
            return vec2<i32>(n2 - i - 1, -1);
        }
        case 5u: { // dst2: antimirror about half-voxel edges, period 2n
            let i = floor_mod(index, 2 * n);
            if (i >= n) {
                return vec2<i32>(2 * n - 1 - i, -1);
            }
            return vec2<i32>(i, 1);
        }
        case 6u: { // dft: circular wrap, period n
            return vec2<i32>(floor_mod(index, n), 1);
        }
        default: {
            return vec2<i32>(0, 0);
        }
    }
}

fn binomial_f(n: u32, k: u32) -> f32 {
    var r = 1.0;
    for (var i = 1u; i <= k; i = i + 1u) {
        r = r * f32(n + 1u - i) / f32(i);
    }
    return r;
}

fn factorial_f(p: u32) -> f32 {
    var r = 1.0;
    for (var i = 2u; i <= p; i = i + 1u) {
        r = r * f32(i);
    }
    return r;
}

fn pow_i(d: f32, p: u32) -> f32 {
    var r = 1.0;
    for (var i = 0u; i < p; i = i + 1u) {
        r = r * d;
    }
    return r;
}

// bspline_weight evaluates the centered cardinal B-spline of degree p via the
// truncated-power finite sum. Exact for every degree up to 7.
fn bspline_weight(p: u32, u: f32) -> f32 {
    let a = abs(u);
    let sup = f32(p + 1u) * 0.5;
    if (a >= sup) {
        return 0.0;
    }
    var acc = 0.0;
    var alt = 1.0;
    for (var k = 0u; k <= p + 1u; k = k + 1u) {
        let d = sup - f32(k) - a;
        if (d <= 0.0) {
            break;
        }
        acc = acc + alt * binomial_f(p + 1u, k) * pow_i(d, p);
        alt = -alt;
    }
    return acc / factorial_f(p);
}

fn bspline_deriv(p: u32, u: f32) -> f32 {
    return bspline_weight(p - 1u, u + 0.5) - bspline_weight(p - 1u, u - 0.5);
}

// AxisBasis holds the boundary-resolved nodes of one axis: flat memory
// offsets (stride pre-multiplied) with signs folded into the weights.
struct AxisBasis {
    n: i32,
    offset: array<i32, 8>,
    weight: array<f32, 8>,
    dweight: array<f32, 8>,
}

fn axis_basis(x: f32, size: i32, stride: i32, order: u32, mode: u32, grad: bool) -> AxisBasis {
    var b: AxisBasis;
    b.n = 0;

    var first: i32;
    var count: i32;
    if (order == 0u) {
        first = i32(floor(x + 0.5));
        count = 1;
    } else if ((order & 1u) == 1u) {
        first = i32(floor(x)) - i32(order - 1u) / 2;
        count = i32(order) + 1;
    } else {
        first = i32(floor(x + 0.5)) - i32(order) / 2;
        count = i32(order) + 1;
    }

    let t = x - f32(first);
    for (var k = 0; k < count; k = k + 1) {
        let node = first + k;
        let rs = bound_resolve(node, size, mode);
        if (rs.y == 0) {
            continue;
        }
        var w: f32;
        var dw = 0.0;
        if (order == 0u) {
            w = 1.0;
        } else if (order == 1u) {
            if (k == 0) {
                w = 1.0 - t;
                dw = -1.0;
            } else {
                w = t;
                dw = 1.0;
            }
        } else {
            let u = x - f32(node);
            w = bspline_weight(order, u);
            if (grad) {
                dw = bspline_deriv(order, u);
            }
        }
        let sgn = f32(rs.y);
        b.offset[b.n] = rs.x * stride;
        b.weight[b.n] = w * sgn;
        b.dweight[b.n] = dw * sgn;
        b.n = b.n + 1;
    }
    return b;
}

fn in_bounds(x: f32, n: i32) -> bool {
    return x >= -0.5 && x <= f32(n) - 0.5;
}
`

// scatterPrelude adds float atomic accumulation on top of spatialPrelude.
// WGSL has no float atomics, so additions go through a compare-exchange
// loop on the u32 bit pattern.
const scatterPrelude = `
fn atomic_add_f32(i: u32, v: f32) {
    var old = atomicLoad(&result[i]);
    loop {
        let nw = bitcast<u32>(bitcast<f32>(old) + v);
        let r = atomicCompareExchangeWeak(&result[i], old, nw);
        if (r.exchanged) {
            break;
        }
        old = r.old_value;
    }
}
`

// loadBasis is the shared main-body fragment: reads the grid point for this
// invocation, applies the bounds gate and builds per-axis bases. Axes beyond
// dim get a single zero-offset unit-weight node so the tensor-product loops
// stay three-deep for every dimensionality. Each shader declares the
// module-scope NEED_GRAD constant before splicing this in.
const loadBasis = `
    let dim = params.misc.x;
    let channels = params.misc.y;
    let nvox = params.misc.z;
    var sizes = params.sizes;
    var strides = params.strides;
    var orders = params.orders;
    var bounds = params.bounds;

    var point: vec3<f32>;
    for (var d = 0u; d < dim; d = d + 1u) {
        point[d] = grid[v * dim + d];
        if (params.misc.w == 0u && !in_bounds(point[d], sizes[d])) {
            return;
        }
    }

    var b: array<AxisBasis, 3>;
    for (var d = 0u; d < dim; d = d + 1u) {
        b[d] = axis_basis(point[d], sizes[d], strides[d], orders[d], bounds[d], NEED_GRAD);
        if (b[d].n == 0) {
            return;
        }
    }
    for (var d = dim; d < 3u; d = d + 1u) {
        b[d].n = 1;
        b[d].offset[0] = 0;
        b[d].weight[0] = 1.0;
        b[d].dweight[0] = 0.0;
    }
`

// pullShader gathers interpolated source values at grid positions.
// Output layout: [channels, nvox], zero-initialized by buffer creation.
const pullShader = `
@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<storage, read> grid: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;
` + spatialPrelude + `
const NEED_GRAD = false;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>,
        @builtin(num_workgroups) wg_count: vec3<u32>) {
    let v = global_id.y * wg_count.x * 256u + global_id.x;
    if (v >= params.misc.z) {
        return;
    }
` + loadBasis + `
    for (var c = 0u; c < channels; c = c + 1u) {
        let base = i32(c) * strides.w;
        var acc = 0.0;
        for (var i = 0; i < b[0].n; i = i + 1) {
            for (var j = 0; j < b[1].n; j = j + 1) {
                for (var k = 0; k < b[2].n; k = k + 1) {
                    let off = base + b[0].offset[i] + b[1].offset[j] + b[2].offset[k];
                    let w = b[0].weight[i] * b[1].weight[j] * b[2].weight[k];
                    acc = acc + w * src[u32(off)];
                }
            }
        }
        result[c * nvox + v] = acc;
    }
}
`

// gradShader gathers the spatial gradient of the interpolant at grid
// positions. Output layout: [channels, nvox, dim].
const gradShader = `
@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<storage, read> grid: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;
` + spatialPrelude + `
const NEED_GRAD = true;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>,
        @builtin(num_workgroups) wg_count: vec3<u32>) {
    let v = global_id.y * wg_count.x * 256u + global_id.x;
    if (v >= params.misc.z) {
        return;
    }
` + loadBasis + `
    for (var c = 0u; c < channels; c = c + 1u) {
        let base = i32(c) * strides.w;
        for (var i = 0; i < b[0].n; i = i + 1) {
            for (var j = 0; j < b[1].n; j = j + 1) {
                for (var k = 0; k < b[2].n; k = k + 1) {
                    let off = base + b[0].offset[i] + b[1].offset[j] + b[2].offset[k];
                    let s = src[u32(off)];
                    var wv: vec3<f32>;
                    wv[0] = b[0].weight[i];
                    wv[1] = b[1].weight[j];
                    wv[2] = b[2].weight[k];
                    var dv: vec3<f32>;
                    dv[0] = b[0].dweight[i];
                    dv[1] = b[1].dweight[j];
                    dv[2] = b[2].dweight[k];
                    for (var d = 0u; d < dim; d = d + 1u) {
                        var w = dv[d];
                        for (var e = 0u; e < dim; e = e + 1u) {
                            if (e != d) {
                                w = w * wv[e];
                            }
                        }
                        let idx = (c * nvox + v) * dim + d;
                        result[idx] = result[idx] + w * s;
                    }
                }
            }
        }
    }
}
`

// pushShader scatters grid-space values into source space, the adjoint of
// pull. Accumulation goes through emulated float atomics since many grid
// positions can land on the same source cell.
const pushShader = `
@group(0) @binding(0) var<storage, read> g: array<f32>;
@group(0) @binding(1) var<storage, read> grid: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<atomic<u32>>;
@group(0) @binding(3) var<uniform> params: Params;
` + spatialPrelude + scatterPrelude + `
const NEED_GRAD = false;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>,
        @builtin(num_workgroups) wg_count: vec3<u32>) {
    let v = global_id.y * wg_count.x * 256u + global_id.x;
    if (v >= params.misc.z) {
        return;
    }
` + loadBasis + `
    for (var c = 0u; c < channels; c = c + 1u) {
        let base = i32(c) * strides.w;
        let val = g[c * nvox + v];
        for (var i = 0; i < b[0].n; i = i + 1) {
            for (var j = 0; j < b[1].n; j = j + 1) {
                for (var k = 0; k < b[2].n; k = k + 1) {
                    let off = base + b[0].offset[i] + b[1].offset[j] + b[2].offset[k];
                    let w = b[0].weight[i] * b[1].weight[j] * b[2].weight[k];
                    atomic_add_f32(u32(off), w * val);
                }
            }
        }
    }
}
`

// countShader scatters unit mass into source space: push of an all-ones
// field without the channel axis.
const countShader = `
@group(0) @binding(0) var<storage, read> grid: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<atomic<u32>>;
@group(0) @binding(2) var<uniform> params: Params;
` + spatialPrelude + scatterPrelude + `
const NEED_GRAD = false;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>,
        @builtin(num_workgroups) wg_count: vec3<u32>) {
    let v = global_id.y * wg_count.x * 256u + global_id.x;
    if (v >= params.misc.z) {
        return;
    }
` + loadBasis + `
    for (var i = 0; i < b[0].n; i = i + 1) {
        for (var j = 0; j < b[1].n; j = j + 1) {
            for (var k = 0; k < b[2].n; k = k + 1) {
                let off = b[0].offset[i] + b[1].offset[j] + b[2].offset[k];
                let w = b[0].weight[i] * b[1].weight[j] * b[2].weight[k];
                atomic_add_f32(u32(off), w);
            }
        }
    }
}
`
