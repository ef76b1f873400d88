package gltext

// Shader pair implementing the distance-threshold consumer contract. The
// fragment shader recovers the glyph edge at dist=0.5. Edge width fw comes
// from screen-space derivatives of the sampled distance when enabled, which
// keeps outline softness constant under scaling; otherwise from the text
// scale and perspective w. The optional supersample path box-filters four
// extra contour taps at half-texel offsets, each weighted 0.5 against the
// center tap.

const vertexShader = `#version 330 core
in vec2 vpos;
in vec2 vtco;

out vec2 tco;
uniform mat4 mvp;

void main()
{
    tco = vtco;
    gl_Position = mvp * vec4(vpos, 0.0, 1.0);
}
` + "\x00"

const fragmentShader = `#version 330 core
in vec2 tco;
out vec4 fcolor;

uniform vec4 col;
uniform float scl;
uniform sampler2D tex;
uniform bool ssp;
uniform bool dfd;

const float SQRT2_2 = 0.70710678118654757;

float contour(float d, float w)
{
    return smoothstep(0.5 - w, 0.5 + w, d);
}

void main()
{
    vec2 uv = tco;
    float dist = texture(tex, uv).r;

    float fw = 0.0;
    if (dfd) {
        fw = fwidth(dist);
    } else {
        fw = (1.0 / scl) * SQRT2_2 / gl_FragCoord.w;
    }
    float alpha = contour(dist, fw);

    if (ssp) {
        float dscale = 0.354; // half of 1/sqrt2
        vec2 duv = dscale * (dFdx(uv) + dFdy(uv));
        vec4 box = vec4(uv - duv, uv + duv);
        float asum = contour(texture(tex, box.xy).r, fw)
                   + contour(texture(tex, box.zw).r, fw)
                   + contour(texture(tex, box.xw).r, fw)
                   + contour(texture(tex, box.zy).r, fw);
        // Center tap plus four half-weight taps, so divide by 3.
        alpha = (alpha + 0.5 * asum) / 3.0;
    }

    fcolor = col * vec4(vec3(1.0), alpha);
}
` + "\x00"
