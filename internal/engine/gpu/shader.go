package gpu

// computeSrc marches the postfix field program uploaded by renderOnce.
// Opcodes, constants and the sky convention mirror the CPU engine.
const computeSrc = `
#version 430
layout(local_size_x = 16, local_size_y = 16) in;

layout(binding = 0, rgba32f) uniform writeonly image2D destTex;

uniform int uWidth;
uniform int uHeight;
uniform int uSamplesPerPx;
uniform int uMaxBounces;
uniform int uInstrCount;
uniform uint uFrameSeed;
uniform vec3 uOrigin;
uniform vec3 uHorizon;
uniform vec3 uZenith;

// Instruction: [op, p0, p1, p2, p3, p4, p5, pad] (8 float)
layout(std430, binding = 1) buffer Program {
    float code[];
};

const int OP_SPHERE = 0;
const int OP_CUBE = 1;
const int OP_PLANE = 2;
const int OP_INTERSECT = 3;
const int OP_SUBTRACT = 4;
const int OP_UNION = 5;
const int OP_ROOT = 6;

const int MAX_STACK = 16;
const float MIN_DISTANCE = 0.001;
const float MAX_TRAVEL = 100.0;
const int MAX_STEPS = 256;

// evalField returns the distance of root 'want', or the scene minimum when
// want < 0; nearest receives the index of the closest root.
float evalField(vec3 p, int want, out int nearest) {
    float stack[MAX_STACK];
    int sp = 0;
    float best = 1e30;
    int root = 0;
    nearest = -1;
    for (int i = 0; i < uInstrCount; i++) {
        int base = i * 8;
        int op = int(code[base]);
        vec3 a = vec3(code[base + 1], code[base + 2], code[base + 3]);
        if (op == OP_SPHERE) {
            stack[sp++] = length(p - a) - code[base + 4];
        } else if (op == OP_CUBE) {
            vec3 q = abs(p - a) - vec3(code[base + 4]);
            stack[sp++] = length(max(q, vec3(0.0))) + min(max(q.x, max(q.y, q.z)), 0.0);
        } else if (op == OP_PLANE) {
            vec3 n = vec3(code[base + 4], code[base + 5], code[base + 6]);
            stack[sp++] = dot(p - a, n);
        } else if (op == OP_INTERSECT) {
            sp--;
            stack[sp - 1] = max(stack[sp - 1], stack[sp]);
        } else if (op == OP_SUBTRACT) {
            sp--;
            stack[sp - 1] = max(stack[sp - 1], -stack[sp]);
        } else if (op == OP_UNION) {
            sp--;
            stack[sp - 1] = min(stack[sp - 1], stack[sp]);
        } else if (op == OP_ROOT) {
            sp--;
            float d = stack[sp];
            if (root == want) {
                nearest = root;
                return d;
            }
            if (d < best) {
                best = d;
                nearest = root;
            }
            root++;
        }
    }
    return best;
}

vec3 estimateNormal(int root, vec3 p) {
    int ignored;
    vec2 e = vec2(MIN_DISTANCE, 0.0);
    vec3 n = vec3(
        evalField(p + e.xyy, root, ignored) - evalField(p - e.xyy, root, ignored),
        evalField(p + e.yxy, root, ignored) - evalField(p - e.yxy, root, ignored),
        evalField(p + e.yyx, root, ignored) - evalField(p - e.yyx, root, ignored));
    if (dot(n, n) < 1e-24) {
        return vec3(0.0, 1.0, 0.0);
    }
    return normalize(n);
}

// march skips the root the ray starts on until the ray is MIN_DISTANCE clear
// of it or heads back into it.
bool march(vec3 ro, vec3 rd, out vec3 hitP, out vec3 hitN) {
    float t = 0.0;
    vec3 p = ro;
    int skip = -1;
    float skipFrom = 0.0;
    for (int step = 0; step < MAX_STEPS; step++) {
        int nearest;
        float d = evalField(p, -1, nearest);
        if (d > MAX_TRAVEL || nearest < 0) {
            return false;
        }
        if (step == 0) {
            if (d < MIN_DISTANCE) {
                skip = nearest;
                skipFrom = d;
            }
        } else if (skip >= 0) {
            int ignored;
            float ds = nearest == skip ? d : evalField(p, skip, ignored);
            if (ds >= MIN_DISTANCE || ds <= skipFrom) {
                skip = -1;
            }
        }
        if (d < MIN_DISTANCE && nearest != skip) {
            hitP = p;
            hitN = estimateNormal(nearest, p);
            return true;
        }
        t += max(d, MIN_DISTANCE);
        p = ro + rd * t;
    }
    return false;
}

uint pcgHash(uint v) {
    uint state = v * 747796405u + 2891336453u;
    uint word = ((state >> ((state >> 28u) + 4u)) ^ state) * 277803737u;
    return (word >> 22u) ^ word;
}

float rand01(inout uint state) {
    state = pcgHash(state);
    return float(state) / 4294967296.0;
}

vec3 randomInUnitSphere(inout uint state) {
    for (int i = 0; i < 64; i++) {
        vec3 p = vec3(rand01(state), rand01(state), rand01(state)) * 2.0 - 1.0;
        if (dot(p, p) < 1.0) {
            return p;
        }
    }
    return vec3(0.0);
}

vec3 sky(vec3 dir) {
    float t = clamp(0.5 * (dir.y + 1.0), 0.0, 1.0);
    return uZenith * (1.0 - t) + uHorizon * t;
}

// trace is the recursive diffuse integrator unrolled into a loop.
vec3 trace(vec3 ro, vec3 rd, inout uint state) {
    float atten = 1.0;
    for (int depth = 0; depth <= uMaxBounces; depth++) {
        vec3 p;
        vec3 n;
        if (!march(ro, rd, p, n)) {
            return atten * sky(rd);
        }
        vec3 dir = n + randomInUnitSphere(state);
        rd = dot(dir, dir) > 0.0 ? normalize(dir) : n;
        ro = p + n * (2.0 * MIN_DISTANCE);
        atten *= 0.5;
    }
    return vec3(0.0);
}

void main() {
    ivec2 pix = ivec2(gl_GlobalInvocationID.xy);
    if (pix.x >= uWidth || pix.y >= uHeight) {
        return;
    }

    uint state = pcgHash(uint(pix.y * uWidth + pix.x) ^ uFrameSeed);
    float aspect = float(uWidth) / float(uHeight);
    int samples = max(uSamplesPerPx, 1);

    vec3 col = vec3(0.0);
    for (int s = 0; s < samples; s++) {
        float px = float(pix.x) + rand01(state);
        float py = float(pix.y) + rand01(state);
        float ndcX = (px / float(uWidth) * 2.0 - 1.0) * aspect;
        float ndcY = py / float(uHeight) * 2.0 - 1.0;
        col += trace(uOrigin, normalize(vec3(ndcX, ndcY, 1.0)), state);
    }
    col /= float(samples);

    imageStore(destTex, pix, vec4(col, 1.0));
}
`
